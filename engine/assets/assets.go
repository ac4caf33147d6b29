package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/trigon/engine/assets/loaders"
	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/resources"
)

const shaderDir = "shaders"

type AssetInfo struct {
	Path       string
	Type       resources.ResourceType
	LastLoaded time.Time
}

/**
 * @brief AssetManager indexes the asset directory, loads files through the
 * loader registered for their type and watches the tree for changes. Writes
 * are published as EVENT_CODE_ASSET_CHANGED; nothing is reloaded.
 */
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[resources.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	running  bool
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[resources.ResourceType]Loader),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	// Register loaders
	am.registerLoader(resources.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(resources.ResourceTypeShader, &loaders.ShaderLoader{})
	return am, nil
}

// Initialize indexes assetsDir and starts watching it and all sub-directories.
func (am *AssetManager) Initialize(assetsDir string) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAssetManagerClosed
	}
	am.root = root
	am.mutex.Unlock()

	if err := am.watchRecursive(root); err != nil {
		core.LogError("failed to watch %s: %s", root, err)
		return err
	}
	am.mutex.Lock()
	am.running = true
	am.mutex.Unlock()
	go am.start()

	core.LogInfo("Asset manager watching %s (%d assets).", root, am.Count())
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return core.ErrAssetManagerClosed
	}
	am.isClosed = true
	running := am.running
	am.mutex.Unlock()

	close(am.done)
	if running {
		<-am.stopped
		return nil
	}
	return am.fsnotify.Close()
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType resources.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// ShaderPath returns where a compiled shader named name is expected.
func (am *AssetManager) ShaderPath(name string) string {
	return filepath.Join(am.root, shaderDir, name+".spv")
}

// LoadAsset loads name with the loader of resourceType. Shaders are looked up
// as shaders/<name>.spv, other assets by their path relative to the root.
func (am *AssetManager) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	var path string
	switch resourceType {
	case resources.ResourceTypeShader:
		path = am.ShaderPath(name)
	case resources.ResourceTypeBinary:
		path = filepath.Join(am.root, name)
	default:
		err := fmt.Errorf("load %q as %s: %w", name, resourceType, core.ErrUnknownAssetType)
		core.LogError(err.Error())
		return nil, err
	}

	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil, core.ErrAssetManagerClosed
	}
	loader, loaderExists := am.loaders[resourceType]
	if asset, exists := am.assets[path]; exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()

	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for %s: %w", resourceType, core.ErrUnknownAssetType)
	}
	// The index may lag behind the watcher; the loader reports missing files.
	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}
	core.LogDebug("Loaded %s asset %s (%d bytes).", resourceType, path, res.DataSize)
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *resources.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("unload %s: %w", asset.Name, core.ErrUnknownAssetType)
	}
	return loader.Unload(asset)
}

// Asset returns the index entry of path.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[path]
	return info, ok
}

// Count returns the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
			return
		}
	}
	// Handle create or modify events
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if am.indexFile(e.Name) {
			core.LogDebug("Asset changed: %s", e.Name)
			ctx := core.EventContext{}
			ctx.Data.C[0] = e.Name
			core.EventFire(core.EVENT_CODE_ASSET_CHANGED, am, ctx)
		}
	}
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
	}
}

// watchRecursive adds path and every directory below it to the watch list and
// indexes the files found on the way.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.indexFile(walkPath)
		return nil
	})
}

// indexFile records path if its type is known and reports whether it did.
func (am *AssetManager) indexFile(path string) bool {
	assetType := determineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return false
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) resources.ResourceType {
	switch filepath.Ext(path) {
	case ".spv":
		return resources.ResourceTypeShader
	case ".bin", ".toml":
		return resources.ResourceTypeBinary
	default:
		return resources.ResourceTypeNone
	}
}
