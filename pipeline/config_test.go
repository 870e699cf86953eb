package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	config := DefaultConfig()
	config.MetadataFile = "metadata.json"
	config.TopicNumber = 1
	return config
}

func TestConfigValidate(t *testing.T) {
	config := validConfig()
	require.NoError(t, config.Validate())
}

func TestConfigValidateRequiresMetadataFile(t *testing.T) {
	config := validConfig()
	config.MetadataFile = ""
	assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
}

func TestConfigValidateRequiresPositiveTopic(t *testing.T) {
	for _, topic := range []int{0, -1} {
		config := validConfig()
		config.TopicNumber = topic
		assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
	}
}

func TestConfigValidateRejectsAllStagesSkipped(t *testing.T) {
	config := validConfig()
	config.RunLoad = false
	config.RunGenerate = false
	config.RunAssemble = false
	assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
}

func TestConfigValidateFillsDefaults(t *testing.T) {
	config := Config{
		MetadataFile: "metadata.json",
		TopicNumber:  3,
		RunLoad:      true,
	}
	require.NoError(t, config.Validate())

	assert.Equal(t, DefaultOutputBase, config.OutputBase)
	assert.Equal(t, DefaultTopK, config.TopK)
	assert.Equal(t, DefaultPoolSize, config.PoolSize)
	assert.Equal(t, DefaultMaxRetries, config.MaxRetries)
	assert.Equal(t, DefaultRetryBaseDelay, config.RetryBaseDelay)
}

func TestConfigValidateRejectsNegativeTimeout(t *testing.T) {
	config := validConfig()
	config.Timeout = -1 * time.Second
	assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
}
