package s3service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var uploadKeyPattern = regexp.MustCompile(`^uploads/2025/03/07/[0-9a-f-]{36}_([A-Za-z0-9._-]+)\.csv$`)

func TestUploadKey(t *testing.T) {
	now := time.Date(2025, 3, 7, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		filename string
		wantName string
	}{
		{"farmers.csv", "farmers"},
		{"Jaipur District Batch.csv", "Jaipur_District_Batch"},
		{"../../etc/passwd", "passwd"},
		{"", "farmers"},
		{"किसान.csv", "farmers"},
	}

	for _, tt := range tests {
		key := UploadKey(tt.filename, now)
		m := uploadKeyPattern.FindStringSubmatch(key)
		if assert.NotNil(t, m, key) {
			assert.Equal(t, tt.wantName, m[1], tt.filename)
		}
	}

	assert.NotEqual(t, UploadKey("a.csv", now), UploadKey("a.csv", now))
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "processed/2025/03/07/x_farmers.csv", ArchiveKey("uploads/2025/03/07/x_farmers.csv"))
	assert.Equal(t, "processed/manual.csv", ArchiveKey("manual.csv"))
}

func TestBatchIDFromKey(t *testing.T) {
	id := "3f2b8c1e-4d5a-4b6c-8d7e-9f0a1b2c3d4e"
	assert.Equal(t, id, BatchIDFromKey("uploads/2025/03/07/"+id+"_farmers.csv"))
	assert.Equal(t, "manual_batch", BatchIDFromKey("uploads/manual_batch.csv"))
}
