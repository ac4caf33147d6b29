package assets

import "github.com/spaghettifunk/trigon/engine/resources"

type Loader interface {
	// params lets callers pass loader specific options, e.g. map[string]string{"name": ...}.
	Load(path string, params interface{}) (*resources.Resource, error)
	Unload(*resources.Resource) error
}
