package env

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DataDir     string        `env:"TEST_DATA_DIR" default:"./data"`
	MaxItems    int           `env:"TEST_MAX_ITEMS" default:"100"`
	Colour      bool          `env:"TEST_COLOUR" default:"true"`
	FetchWait   time.Duration `env:"TEST_FETCH_WAIT" default:"30s"`
	BucketName  string        `env:"TEST_BUCKET"`
	notExported string        `env:"TEST_HIDDEN"`
}

func TestParse(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_DATA_DIR", "/var/lib/tw")
	os.Setenv("TEST_MAX_ITEMS", "250")
	os.Setenv("TEST_COLOUR", "false")
	os.Setenv("TEST_FETCH_WAIT", "1m30s")
	os.Setenv("TEST_BUCKET", "tw-bucket")

	var cfg testConfig
	require.NoError(t, Parse(&cfg))

	assert.Equal(t, "/var/lib/tw", cfg.DataDir)
	assert.Equal(t, 250, cfg.MaxItems)
	assert.False(t, cfg.Colour)
	assert.Equal(t, 90*time.Second, cfg.FetchWait)
	assert.Equal(t, "tw-bucket", cfg.BucketName)
	assert.Empty(t, cfg.notExported)
}

func TestParse_Defaults(t *testing.T) {
	os.Clearenv()

	var cfg testConfig
	require.NoError(t, Parse(&cfg))

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 100, cfg.MaxItems)
	assert.True(t, cfg.Colour)
	assert.Equal(t, 30*time.Second, cfg.FetchWait)
	assert.Empty(t, cfg.BucketName)
}

func TestParse_EmptyStringRespected(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_DATA_DIR", "")

	var cfg testConfig
	require.NoError(t, Parse(&cfg))

	// A set-but-empty string wins over the default.
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, 100, cfg.MaxItems)
}

func TestParse_EmptyStringIntError(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_MAX_ITEMS", "")

	var cfg testConfig
	err := Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")

	var inv ErrInvalidValue
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "TEST_MAX_ITEMS", inv.EnvVar)
}

func TestParse_NotStructPointer(t *testing.T) {
	var n int
	assert.Error(t, Parse(&n))
	assert.Error(t, Parse(testConfig{}))
}

func TestParse_EmbeddedStruct(t *testing.T) {
	type backendConfig struct {
		Bucket string `env:"TEST_EMB_BUCKET"`
		Kind   string `env:"TEST_EMB_KIND" default:"fs"`
	}
	type appConfig struct {
		backendConfig
		Name string `env:"TEST_EMB_NAME" default:"taskwell"`
	}

	t.Run("parses embedded struct fields", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("TEST_EMB_BUCKET", "tw-bucket")
		os.Setenv("TEST_EMB_NAME", "custom")

		var cfg appConfig
		require.NoError(t, Parse(&cfg))

		assert.Equal(t, "tw-bucket", cfg.Bucket)
		assert.Equal(t, "fs", cfg.Kind)
		assert.Equal(t, "custom", cfg.Name)
	})

	t.Run("empty string in embedded struct is respected", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("TEST_EMB_KIND", "")

		var cfg appConfig
		require.NoError(t, Parse(&cfg))
		assert.Equal(t, "", cfg.Kind)
	})
}

type validatedConfig struct {
	Kind string `env:"TEST_VAL_KIND" default:"fs"`
}

var errBadKind = errors.New("unknown kind")

func (c *validatedConfig) Validate() error {
	if c.Kind != "fs" && c.Kind != "gcs" {
		return errBadKind
	}
	return nil
}

func TestParse_Validator(t *testing.T) {
	os.Clearenv()
	os.Setenv("TEST_VAL_KIND", "ftp")

	var cfg validatedConfig
	err := Parse(&cfg)
	assert.ErrorIs(t, err, errBadKind)

	os.Setenv("TEST_VAL_KIND", "gcs")
	require.NoError(t, Parse(&cfg))
	assert.Equal(t, "gcs", cfg.Kind)
}
