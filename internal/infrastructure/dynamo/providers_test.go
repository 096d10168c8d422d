package dynamo

import (
	"testing"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectActivePrefersDefault(t *testing.T) {
	configs := []domain.ProviderConfig{
		{ProviderID: "p1", Provider: domain.ProviderSendGrid, IsActive: true},
		{ProviderID: "p2", Provider: domain.ProviderResend, IsActive: true, IsDefault: true},
		{ProviderID: "p3", Provider: domain.ProviderMailgun, IsActive: true},
	}

	got := selectActive(configs)

	require.NotNil(t, got)
	assert.Equal(t, "p2", got.ProviderID)
}

func TestSelectActiveSkipsInactive(t *testing.T) {
	configs := []domain.ProviderConfig{
		{ProviderID: "p1", Provider: domain.ProviderTwilio, IsActive: false, IsDefault: true},
		{ProviderID: "p2", Provider: domain.ProviderTermii, IsActive: true},
	}

	got := selectActive(configs)

	require.NotNil(t, got)
	assert.Equal(t, "p2", got.ProviderID)
}

func TestSelectActiveNoneActive(t *testing.T) {
	configs := []domain.ProviderConfig{
		{ProviderID: "p1", IsActive: false},
	}

	assert.Nil(t, selectActive(configs))
	assert.Nil(t, selectActive(nil))
}
