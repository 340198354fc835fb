package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

var _ inventory.AttachmentStore = (*LocalStore)(nil)

// LocalStore guarda los adjuntos bajo root; la API sirve root en /static.
type LocalStore struct {
	root string
	now  func() time.Time
}

// NewLocalStore construye el driver local. root se crea si no existe.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", root, err)
	}
	return &LocalStore{root: root, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (s *LocalStore) WithClock(now func() time.Time) *LocalStore {
	s.now = now
	return s
}

// Save escribe el archivo y devuelve su ruta relativa a root (uploads/...).
func (s *LocalStore) Save(ctx context.Context, file *dto.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := ObjectKey(file.Filename, s.now())
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: crear carpeta: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: crear archivo: %w", err)
	}
	if _, err := io.Copy(out, file.Content); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("storage: escribir archivo: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("storage: cerrar archivo: %w", err)
	}
	return key, nil
}

// Delete borra un archivo guardado por Save. Una ruta inexistente no es error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := path.Clean(key)
	if !strings.HasPrefix(clean, KeyPrefix+"/") {
		return fmt.Errorf("storage: ruta fuera de %s: %q", KeyPrefix, key)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: borrar %s: %w", clean, err)
	}
	return nil
}
