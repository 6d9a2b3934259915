package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tecnoloc-diag/config"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://s3.example.com/assets/manuals/a.pdf", ObjectURL("https://s3.example.com/", "assets", "manuals/a.pdf"))
	assert.Equal(t, "https://s3.example.com/assets/x", ObjectURL("https://s3.example.com", "assets", "x"))
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	objs := []ObjectInfo{
		{Key: "old", LastModified: now.Add(-2 * time.Hour)},
		{Key: "new", LastModified: now},
		{Key: "mid", LastModified: now.Add(-time.Hour)},
	}
	SortNewestFirst(objs)
	assert.Equal(t, "new", objs[0].Key)
	assert.Equal(t, "mid", objs[1].Key)
	assert.Equal(t, "old", objs[2].Key)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{S3URL: "u", S3Region: "r", S3Key: "k", S3Secret: "s", S3Bucket: "b"}
	assert.Equal(t, Options{URL: "u", Region: "r", Key: "k", Secret: "s", Bucket: "b"}, OptionsFromConfig(cfg))
}
