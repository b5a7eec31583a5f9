// Package assets gives access to the embedded filesystem with the site
// templates and the default label profile.
package assets

import (
	"embed"
	"io/fs"
	"path"

	"github.com/pkg/errors"

	"github.com/compat-todo/compat-todo/data"
)

const (
	// TemplatesRoot is the base path of the embedded data.
	TemplatesRoot = "templates"

	SiteTemplatesPath = TemplatesRoot + "/site"
	ProfilesPath      = TemplatesRoot + "/profile"
)

var efs fs.FS = data.Templates

// GetData returns the embedded filesystem set by UpdateData.
func GetData() fs.FS {
	return efs
}

// UpdateData replaces the embedded filesystem. Tests use it to point the
// package to their own embed.FS.
func UpdateData(d *embed.FS) {
	efs = d
}

// ReadFile reads a file from the embedded filesystem.
func ReadFile(name string) ([]byte, error) {
	if efs == nil {
		return nil, errors.New("embedded data is not loaded")
	}
	buf, err := fs.ReadFile(efs, name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read embedded file %s", name)
	}
	return buf, nil
}

// ReadSiteFile reads a site template or static file by its base name.
func ReadSiteFile(name string) ([]byte, error) {
	return ReadFile(path.Join(SiteTemplatesPath, name))
}

// GetAllFilenames return all file names from an path in the embedded FS.
func GetAllFilenames(efs fs.FS, root string) (files []string, err error) {
	if efs == nil {
		return nil, errors.New("embedded data is not loaded")
	}
	if err := fs.WalkDir(efs, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, path)

		return nil
	}); err != nil {
		return nil, err
	}

	return files, nil
}
