package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/jda/java"
)

// Load opens path according to what it is: a directory, a jar or zip, a
// single class file or a YAML snapshot. The returned id is the id the
// classes were added under.
func (t *Table) Load(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	if info.IsDir() {
		return path, t.LoadDir(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jar", ".zip", ".war", ".apk":
		return path, t.LoadJar(path)
	case ".class":
		return path, t.LoadClassFile(path)
	case ".yaml", ".yml":
		return t.LoadYAML(path)
	}
	return "", fmt.Errorf("load %s: %w", path, ErrUnsupported)
}

// LoadJar adds every class entry of the archive, including entries of jars
// nested inside it, under the archive path.
func (t *Table) LoadJar(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open jar %s: %w", path, err)
	}
	defer r.Close()
	n := t.addZip(path, &r.Reader, true)
	log.Infof("loaded %d classes from %s", n, path)
	return nil
}

func (t *Table) addZip(containerID string, r *zip.Reader, nested bool) int {
	n := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch filepath.Ext(f.Name) {
		case ".class":
			if strings.HasPrefix(f.Name, "META-INF/") {
				continue
			}
			data, err := readEntry(f)
			if err != nil {
				log.Warningf("%s: %s: %s", containerID, f.Name, err.Error())
				continue
			}
			t.Add(containerID, classNameFromEntry(f.Name), data)
			n++
		case ".jar":
			if !nested {
				continue
			}
			data, err := readEntry(f)
			if err != nil {
				log.Warningf("%s: %s: %s", containerID, f.Name, err.Error())
				continue
			}
			inner, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				log.Warningf("%s: %s: %s", containerID, f.Name, err.Error())
				continue
			}
			n += t.addZip(containerID, inner, false)
		}
	}
	return n
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// classNameFromEntry strips the extension and the prefixes Spring Boot and
// WAR archives put in front of the package path.
func classNameFromEntry(name string) string {
	name = strings.TrimSuffix(name, ".class")
	for _, prefix := range []string{"BOOT-INF/classes/", "WEB-INF/classes/"} {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}

// LoadDir adds every class file below root, named by its slash separated
// path relative to root.
func (t *Table) LoadDir(root string) error {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".class" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		t.Add(root, strings.TrimSuffix(filepath.ToSlash(rel), ".class"), data)
		n++
		return nil
	})
	if err != nil {
		return fmt.Errorf("load directory %s: %w", root, err)
	}
	log.Infof("loaded %d classes from %s", n, root)
	return nil
}

// LoadClassFile parses a single class file eagerly, since its path does not
// tell the package it belongs to.
func (t *Table) LoadClassFile(path string) error {
	model, err := java.ClassModelFromFile(path)
	if err != nil {
		return fmt.Errorf("load class %s: %w", path, err)
	}
	t.AddModel(path, model)
	return nil
}

// Snapshot is the YAML form of one container.
type Snapshot struct {
	Container string             `yaml:"container"`
	Classes   []*java.ClassModel `yaml:"classes"`
}

func DecodeYAML(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// LoadYAML adds the classes of a snapshot file. The container id is the one
// recorded in the snapshot, or path when the snapshot has none.
func (t *Table) LoadYAML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("load snapshot %s: %w", path, err)
	}
	defer f.Close()
	s, err := DecodeYAML(f)
	if err != nil {
		return "", fmt.Errorf("load snapshot %s: %w", path, err)
	}
	id := s.Container
	if id == "" {
		id = path
	}
	for _, m := range s.Classes {
		if m == nil || m.Name == "" {
			continue
		}
		t.AddModel(id, m)
	}
	return id, nil
}

// Snapshot collects every resolvable class of containerID in name order.
func (t *Table) Snapshot(containerID string) *Snapshot {
	s := &Snapshot{Container: containerID}
	for _, name := range t.Names(containerID) {
		if m, ok := t.Resolve(containerID, name); ok {
			s.Classes = append(s.Classes, m)
		}
	}
	return s
}

func EncodeYAML(w io.Writer, s *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}
