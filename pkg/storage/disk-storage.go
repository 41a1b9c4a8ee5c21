package storage

import (
	"compress/gzip"
	"io"
	"iter"
	"os"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-catalogue/pkg/types"
	"github.com/pkg/errors"
)

var api = sonic.ConfigStd

func (d *DiskStorage) LoadRubrics() ([]types.Rubric, error) {
	fileName, _ := d.GetFileName(rubricsFile)
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", fileName)
	}
	return ParseRubrics(data)
}

// ParseRubrics validates and decodes a rubric list.
func ParseRubrics(data []byte) ([]types.Rubric, error) {
	if err := ValidateRubrics(data); err != nil {
		return nil, err
	}
	var rubrics []types.Rubric
	if err := api.Unmarshal(data, &rubrics); err != nil {
		return nil, errors.Wrap(err, "failed to decode rubrics")
	}
	return rubrics, nil
}

func (d *DiskStorage) SaveRubrics(rubrics []types.Rubric) error {
	data, err := api.Marshal(rubrics)
	if err != nil {
		return errors.Wrap(err, "failed to encode rubrics")
	}
	if err = ValidateRubrics(data); err != nil {
		return err
	}
	return d.writeFile(rubricsFile, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// LoadDocuments streams the documents of a collection to fn. A missing
// snapshot is not an error.
func (d *DiskStorage) LoadDocuments(collection string, fn func(types.Document) error) (int, error) {
	fileName, _ := d.GetFileName(documentsFile(collection))
	file, err := os.Open(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "failed to open %s", fileName)
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", fileName)
	}
	defer zipReader.Close()

	dec := api.NewDecoder(zipReader)
	count := 0
	for {
		var doc types.Document
		if err = dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, errors.Wrapf(err, "failed to decode %s", fileName)
		}
		if doc.Deleted {
			continue
		}
		if err = fn(doc); err != nil {
			return count, err
		}
		count++
	}
}

func (d *DiskStorage) SaveDocuments(collection string, docs iter.Seq[*types.Document]) error {
	return d.writeFile(documentsFile(collection), func(w io.Writer) error {
		zipWriter := gzip.NewWriter(w)
		enc := api.NewEncoder(zipWriter)
		for doc := range docs {
			if err := enc.Encode(doc); err != nil {
				_ = zipWriter.Close()
				return err
			}
		}
		return zipWriter.Close()
	})
}

func (d *DiskStorage) writeFile(name string, write func(io.Writer) error) error {
	if err := os.MkdirAll(d.RootFolder, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", d.RootFolder)
	}
	fileName, tmpFileName := d.GetFileName(name)
	file, err := os.Create(tmpFileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", tmpFileName)
	}
	if err = write(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFileName)
		return errors.Wrapf(err, "failed to write %s", fileName)
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = os.Rename(tmpFileName, fileName); err != nil {
		_ = os.Remove(tmpFileName)
		return errors.Wrapf(err, "failed to replace %s", fileName)
	}
	return nil
}
