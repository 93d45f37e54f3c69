package stores

import (
	"context"
	"errors"
	"os"

	"cardgen-server/core"
	"cardgen-server/stores/aws"
	"cardgen-server/stores/filesystem"
	"cardgen-server/stores/memory"
	"cardgen-server/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore returns the export store selected by STORAGE_TYPE.
func GetStore(ctx context.Context) (core.ExportStore, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	var store core.ExportStore
	var err error

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data" // Default path
		}
		storageField["basePath"] = basePath
		store, err = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "cardgen.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		store, err = sqlite.NewStore(dataSourceName)
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = bucketName
		store, err = aws.NewStore(ctx, bucketName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	if err != nil {
		return nil, err
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
