package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 7, 9, 5, 3, 123456789, time.UTC)
	assert.Equal(t, "uploads/2026/03/07/foto_090503_123456.jpg", ObjectKey("foto.JPG", now))
	assert.Equal(t, "uploads/2026/03/07/Valvula_rota_090503_123456.png", ObjectKey("../../Válvula rota.png", now))
	assert.Equal(t, "uploads/2026/03/07/imagen_090503_123456", ObjectKey("///", now))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "informe_final.pdf", SanitizeFilename(`C:\docs\informe final.pdf`))
	assert.Equal(t, "nino.jpg", SanitizeFilename("niño.jpg"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "", SanitizeFilename("☃"))
}

func TestLocalStore_Save(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 3, 7, 9, 5, 3, 0, time.UTC)
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	store.WithClock(func() time.Time { return now })

	key, err := store.Save(context.Background(), &dto.Upload{Filename: "guia.jpg", Content: strings.NewReader("contenido")})
	require.NoError(t, err)
	assert.Equal(t, "uploads/2026/03/07/guia_090503_000000.jpg", key)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))

	_, err = store.Save(context.Background(), &dto.Upload{Filename: "guia.jpg", Content: strings.NewReader("x")})
	assert.Error(t, err, "no pisa un archivo existente")
}

func TestLocalStore_Delete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	key, err := store.Save(context.Background(), &dto.Upload{Filename: "guia.jpg", Content: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), key), "borrar dos veces no es error")
	assert.Error(t, store.Delete(context.Background(), "uploads/../../etc/passwd"))
	assert.Error(t, store.Delete(context.Background(), "config.env"))
}
