package providers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// snsAdapter publishes SMS through AWS SNS. Credentials may be supplied in
// the bundle; otherwise the default AWS credential chain applies.
type snsAdapter struct {
	client *sns.Client
}

func newSNS(creds map[string]string) (*snsAdapter, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(creds["region"]),
	}
	if creds["access_key_id"] != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds["access_key_id"], creds["secret_access_key"], ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return &snsAdapter{client: sns.NewFromConfig(awsCfg)}, nil
}

func (a *snsAdapter) Send(ctx context.Context, msg Message) Result {
	out, err := a.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(msg.Recipient),
		Message:     aws.String(msg.Body),
	})
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, Response: aws.ToString(out.MessageId)}
}
