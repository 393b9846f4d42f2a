package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"umbraco-cms/pkg/config"
	"umbraco-cms/pkg/udi"
)

var ErrMediaNotConfigured = errors.New("media_folder not configured")

type MediaFile struct {
	Name     string `json:"name"`
	RepoPath string `json:"repo_path"`
	Path     string `json:"path"` // public path for markdown
	Udi      string `json:"udi"`
	Size     int64  `json:"size"`
}

// GetMediaConfig returns the media and public folders, preferring the
// collection's own settings.
func GetMediaConfig(collectionName string) (string, string, error) {
	cfg, err := GetCMSConfig()
	if err != nil {
		return "", "", err
	}
	if col := cfg.FindCollection(collectionName); col != nil && col.MediaFolder != "" {
		return col.MediaFolder, col.PublicFolder, nil
	}
	if cfg.MediaFolder == "" {
		if config.StaticMediaDir == "" {
			return "", "", ErrMediaNotConfigured
		}
		return config.StaticMediaDir, "", nil
	}
	return cfg.MediaFolder, cfg.PublicFolder, nil
}

func newMediaFile(mediaFolder, publicFolder, name string, size int64) MediaFile {
	repoPath := path.Join(filepath.ToSlash(mediaFolder), name)
	return MediaFile{
		Name:     name,
		RepoPath: repoPath,
		Path:     publicPath(mediaFolder, publicFolder, name),
		Udi:      udi.NewString(udi.MediaFile, repoPath).String(),
		Size:     size,
	}
}

func publicPath(mediaFolder, publicFolder, name string) string {
	var p string
	switch cleaned := filepath.ToSlash(mediaFolder); {
	case publicFolder != "":
		p = path.Join(filepath.ToSlash(publicFolder), name)
	case strings.HasPrefix(cleaned, "static/"):
		p = path.Join(strings.TrimPrefix(cleaned, "static/"), name)
	case strings.HasPrefix(cleaned, "content/"):
		// page bundle resources are addressed relative to the page
		return name
	default:
		p = path.Join(cleaned, name)
	}
	if strings.HasPrefix(p, "http") {
		return p
	}
	return "/" + strings.TrimPrefix(p, "/")
}

func ListMediaFiles(collectionName string) ([]MediaFile, error) {
	mediaFolder, publicFolder, err := GetMediaConfig(collectionName)
	if err != nil {
		return nil, err
	}

	fullMediaPath := filepath.Join(config.RepoPath, mediaFolder)
	if err := os.MkdirAll(fullMediaPath, 0755); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullMediaPath)
	if err != nil {
		return nil, err
	}

	files := make([]MediaFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, newMediaFile(mediaFolder, publicFolder, entry.Name(), info.Size()))
	}
	return files, nil
}

func SaveMediaFile(header *multipart.FileHeader, collectionName string) (*MediaFile, error) {
	mediaFolder, publicFolder, err := GetMediaConfig(collectionName)
	if err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := strings.ReplaceAll(filepath.Base(header.Filename), " ", "_")
	ext := filepath.Ext(filename)
	filename = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(filename, ext), time.Now().Unix(), ext)

	fullMediaPath := SafeJoin(config.RepoPath, mediaFolder, filename)
	if fullMediaPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, filename)
	}
	if err := os.MkdirAll(filepath.Dir(fullMediaPath), 0755); err != nil {
		return nil, err
	}

	dst, err := os.Create(fullMediaPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return nil, err
	}

	f := newMediaFile(mediaFolder, publicFolder, filename, n)
	return &f, nil
}

// DeleteMediaFile removes a file given its repo path, e.g. "static/images/a.png".
// The path must lie inside a configured media folder.
func DeleteMediaFile(repoPath string) error {
	full, err := mediaPath(repoPath)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// MediaByUdi resolves a media-file UDI to the file on disk.
func MediaByUdi(u udi.Udi) (*MediaFile, error) {
	s, ok := u.(udi.StringUdi)
	if !ok || s.EntityType() != udi.MediaFile || s.IsRoot() {
		return nil, fmt.Errorf("%w: %s", os.ErrNotExist, u)
	}
	full, err := mediaPath(s.ID())
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	dir, name := path.Split(s.ID())
	_, publicFolder, _ := mediaFolderOf(strings.TrimSuffix(dir, "/"))
	f := newMediaFile(strings.TrimSuffix(dir, "/"), publicFolder, name, info.Size())
	return &f, nil
}

func mediaPath(repoPath string) (string, error) {
	repoPath = strings.TrimPrefix(filepath.ToSlash(repoPath), "/")
	if _, _, ok := mediaFolderOf(path.Dir(repoPath)); !ok {
		return "", fmt.Errorf("%w: %s is outside the media folders", ErrInvalidPath, repoPath)
	}
	full := SafeJoin(config.RepoPath, "", repoPath)
	if full == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, repoPath)
	}
	return full, nil
}

// mediaFolderOf reports whether dir is a configured media folder.
func mediaFolderOf(dir string) (string, string, bool) {
	cfg, err := GetCMSConfig()
	if err != nil {
		return "", "", false
	}
	same := func(folder string) bool {
		return folder != "" && strings.Trim(filepath.ToSlash(folder), "/") == strings.Trim(dir, "/")
	}
	if same(cfg.MediaFolder) {
		return cfg.MediaFolder, cfg.PublicFolder, true
	}
	if cfg.MediaFolder == "" && same(config.StaticMediaDir) {
		return config.StaticMediaDir, "", true
	}
	for _, col := range cfg.Collections {
		if same(col.MediaFolder) {
			return col.MediaFolder, col.PublicFolder, true
		}
	}
	return "", "", false
}
