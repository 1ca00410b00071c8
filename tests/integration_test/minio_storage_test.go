//go:build integration

package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/config"
	storageminio "github.com/reactome/gsa-orchestrator/internal/storage/minio"
	minioinfra "github.com/reactome/gsa-orchestrator/tests/integration_test/infra/minio"
)

func TestMinioStorage_UploadDownloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	container, endpoint := minioinfra.SetupContainer(ctx)
	defer container.Terminate(ctx)

	minioinfra.CreateJobsBucket(t, "jobs", endpoint)

	client, err := storageminio.New(&config.MinioConfig{
		URL:         endpoint,
		JOBS_BUCKET: "jobs",
		ACCESS_KEY:  "minioadmin",
		SECRET_KEY:  "minioadmin",
		USE_SSL:     false,
	})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.Upload(ctx, "result:IntegrationAnalysis00000001", []byte(`{"release":"90"}`), "application/octet-stream"))

	data, err := client.Download(ctx, "result:IntegrationAnalysis00000001")
	require.NoError(t, err)
	require.JSONEq(t, `{"release":"90"}`, string(data))
}
