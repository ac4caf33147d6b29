package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/resources"
)

type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, params interface{}) (*resources.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("binary loader: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return &resources.Resource{
		Name:     resourceName(path, params),
		FullPath: path,
		Type:     resources.ResourceTypeBinary,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(res *resources.Resource) error {
	if res != nil {
		res.Data = nil
		res.DataSize = 0
	}
	return nil
}

// resourceName takes the "name" entry of params when given, the file name
// without extensions otherwise.
func resourceName(path string, params interface{}) string {
	if p, ok := params.(map[string]string); ok {
		if name, ok := p["name"]; ok {
			return name
		}
	}
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
