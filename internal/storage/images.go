package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ImageStore persiste imágenes de avatar. Save devuelve la referencia única
// que la cuenta guarda; Remove tolera referencias ya ausentes devolviendo
// fs.ErrNotExist para que el caller lo degrade a warning.
type ImageStore interface {
	Save(ctx context.Context, originalName string, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
	ResolveURL(ctx context.Context, ref string) (string, error)
}

// ErrInvalidRef indica una referencia que escapa del área de almacenamiento.
var ErrInvalidRef = errors.New("invalid image reference")

// DiskImageStore guarda imágenes en el filesystem local, servidas como
// estáticos bajo un prefijo dedicado.
type DiskImageStore struct {
	dir    string
	prefix string
}

func NewDiskImageStore(dir, urlPrefix string) *DiskImageStore {
	return &DiskImageStore{
		dir:    dir,
		prefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

func (s *DiskImageStore) Save(_ context.Context, originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	ref := UniqueImageName(originalName)
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *DiskImageStore) Remove(_ context.Context, ref string) error {
	if !validRef(ref) {
		return ErrInvalidRef
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return fs.ErrNotExist
	}
	return err
}

func (s *DiskImageStore) ResolveURL(_ context.Context, ref string) (string, error) {
	if !validRef(ref) {
		return "", ErrInvalidRef
	}
	return s.prefix + "/" + ref, nil
}

// UniqueImageName genera un nombre con prefijo de timestamp para evitar
// colisiones entre subidas con el mismo nombre original.
func UniqueImageName(originalName string) string {
	base := sanitizeName(path.Base(originalName))
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), base)
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	var b strings.Builder
	prevDot := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDot = false
		case r == '.':
			// Los puntos consecutivos se colapsan: toda referencia generada
			// por Save debe ser aceptada por Remove y ResolveURL.
			if !prevDot {
				b.WriteRune(r)
			}
			prevDot = true
		case r == '-' || r == '_':
			b.WriteRune(r)
			prevDot = false
		default:
			b.WriteRune('_')
			prevDot = false
		}
	}
	return b.String()
}

func validRef(ref string) bool {
	if strings.TrimSpace(ref) == "" {
		return false
	}
	if strings.Contains(ref, "/") || strings.Contains(ref, "\\") || strings.Contains(ref, "..") {
		return false
	}
	return true
}
