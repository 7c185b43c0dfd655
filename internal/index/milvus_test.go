package index

import (
	"context"
	"testing"
)

// TestDefaultMilvusConfig tests the default connection and index parameters
func TestDefaultMilvusConfig(t *testing.T) {
	t.Setenv("MILVUS_ADDRESS", "")
	t.Setenv("MILVUS_COLLECTION", "")

	config := DefaultMilvusConfig()

	if config.Address != "localhost:19530" {
		t.Errorf("Expected localhost:19530, got %s", config.Address)
	}
	if config.CollectionName != "patchrank_patches" {
		t.Errorf("Expected patchrank_patches, got %s", config.CollectionName)
	}
	if config.Dimension != 1024 {
		t.Errorf("Expected dimension 1024, got %d", config.Dimension)
	}
	if config.IndexType != "HNSW" {
		t.Errorf("Expected HNSW index, got %s", config.IndexType)
	}
	if config.MetricType != "COSINE" {
		t.Errorf("Expected COSINE metric, got %s", config.MetricType)
	}
	if config.M != 16 || config.EfConstruction != 256 {
		t.Errorf("Expected HNSW params 16/256, got %d/%d", config.M, config.EfConstruction)
	}
}

// TestDefaultMilvusConfig_EnvOverrides tests environment-driven configuration
func TestDefaultMilvusConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")
	t.Setenv("MILVUS_COLLECTION", "patches_staging")

	config := DefaultMilvusConfig()

	if config.Address != "milvus.internal:19530" {
		t.Errorf("Expected overridden address, got %s", config.Address)
	}
	if config.CollectionName != "patches_staging" {
		t.Errorf("Expected overridden collection, got %s", config.CollectionName)
	}
}

// TestNewMilvusStore_InvalidDimension tests the dimension guard before dialing
func TestNewMilvusStore_InvalidDimension(t *testing.T) {
	config := DefaultMilvusConfig()
	config.Dimension = 0

	_, err := NewMilvusStore(context.Background(), config)
	if err != ErrInvalidDimension {
		t.Errorf("Expected ErrInvalidDimension, got %v", err)
	}
}
