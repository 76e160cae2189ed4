package minio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"workshop-backend/pkg/config"
)

func TestObjectKey(t *testing.T) {
	root := filepath.Join(t.TempDir(), "reports")

	key, err := ObjectKey(root, filepath.Join(root, "2024", "02", "workorders.csv"))
	require.NoError(t, err)
	require.Equal(t, "reports/2024/02/workorders.csv", key)

	_, err = ObjectKey(root, filepath.Join(filepath.Dir(root), "elsewhere.csv"))
	require.Error(t, err)

	_, err = ObjectKey(root, root)
	require.Error(t, err)
}

func TestNewArchiveDisabled(t *testing.T) {
	a, err := NewArchive(fxtest.NewLifecycle(t), &config.Config{})
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestNewArchiveConfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Minio.Endpoint = "localhost:9000"
	cfg.Minio.BucketName = "workshop-reports"

	a, err := NewArchive(fxtest.NewLifecycle(t), cfg)
	require.NoError(t, err)
	require.NotNil(t, a)
	require.Equal(t, "workshop-reports", a.bucket)
}
