package cache

import "io/fs"

var staticCache = NewCache[string, string]()

func GetStaticHash(path string) (string, bool) {
	return staticCache.Get(path)
}

func SetStaticHash(path, hash string) {
	staticCache.Set(path, hash)
}

// HashStatic records an ETag for every file under fsys, keyed by the URL the
// file is served from.
func HashStatic(fsys fs.FS, urlPrefix string, hash func([]byte) string) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		SetStaticHash(urlPrefix+path, hash(data))
		return nil
	})
}
