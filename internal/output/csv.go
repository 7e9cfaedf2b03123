package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

type csvFile struct {
	file    *os.File
	writer  *csv.Writer
	headers []string
}

// CSVOutput writes one data.csv per topic partition. The header is taken
// from the first record of each file; nested objects become dotted
// columns such as pays.courierPayFinalAmount.
type CSVOutput struct {
	basePath string
	folder   string
	files    map[string]*csvFile
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*csvFile),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	fullPath, partitionPath, err := partitionDir(c.basePath, c.folder, topic, msg)
	if err != nil {
		return err
	}

	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}
	flat := make(map[string]string)
	flatten("", event, flat)

	fileKey := fmt.Sprintf("%s_%s", topic, partitionPath)
	cf, ok := c.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err := os.Create(filepath.Join(fullPath, "data.csv"))
		if err != nil {
			return err
		}
		cf = &csvFile{file: file, writer: csv.NewWriter(file), headers: headersOf(flat)}
		c.files[fileKey] = cf

		if err := cf.writer.Write(cf.headers); err != nil {
			return err
		}
	}

	row := make([]string, len(cf.headers))
	for i, header := range cf.headers {
		row[i] = flat[header]
	}
	if err := cf.writer.Write(row); err != nil {
		return err
	}

	cf.writer.Flush()
	return cf.writer.Error()
}

func (c *CSVOutput) Close() error {
	var firstErr error
	for key, cf := range c.files {
		cf.writer.Flush()
		if err := cf.writer.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := cf.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.files, key)
	}
	return firstErr
}

func headersOf(flat map[string]string) []string {
	headers := make([]string, 0, len(flat))
	for key := range flat {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	return headers
}

func flatten(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, nested := range v {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			flatten(name, nested, out)
		}
	case float64:
		out[prefix] = strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		out[prefix] = ""
	case []interface{}:
		b, _ := json.Marshal(v)
		out[prefix] = string(b)
	default:
		out[prefix] = fmt.Sprintf("%v", v)
	}
}
