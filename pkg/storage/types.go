package storage

import (
	"fmt"
	"path/filepath"
	"time"
)

const rubricsFile = "rubrics.json"

// DiskStorage keeps the catalogue snapshot in a single folder: the rubric
// metadata as json and one gzipped json stream of documents per collection.
type DiskStorage struct {
	RootFolder string
}

func NewDiskStorage(rootFolder string) *DiskStorage {
	return &DiskStorage{RootFolder: rootFolder}
}

// GetFileName returns the final path and a unique temporary path to write to
// before renaming.
func (ds *DiskStorage) GetFileName(name string) (string, string) {
	fileName := filepath.Join(ds.RootFolder, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixNano())
	return fileName, tmpFileName
}

func documentsFile(collection string) string {
	return collection + ".jz"
}
