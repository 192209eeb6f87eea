package account

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photos/internal/models"

	"go.uber.org/zap"
)

// StockAlbum is the album name the seed images land in.
const StockAlbum = "stock"

var seedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// seedStock populates the stock user's "stock" album from the seed
// directory on first login. A user that already has a stock album is
// left alone, so repeated logins are no-ops. A missing seed directory
// is not an error.
func (m *Manager) seedStock(u *models.User) error {
	if u.Album(StockAlbum) != nil {
		return nil
	}
	album, err := u.CreateAlbum(StockAlbum)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(m.seedDir)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Info("seed directory missing, stock album left empty",
				zap.String("dir", m.seedDir))
			return nil
		}
		return err
	}

	// Deterministic insertion order regardless of directory listing.
	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		if e.IsDir() || !seedImageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	for _, name := range names {
		info, err := byName[name].Info()
		if err != nil {
			m.log.Warn("skipping unreadable seed image",
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		path, err := filepath.Abs(filepath.Join(m.seedDir, name))
		if err != nil {
			return err
		}
		photo := models.NewPhoto(path, "", info.ModTime())
		if err := album.AddPhoto(photo); err != nil {
			return err
		}
	}

	m.log.Info("stock album seeded",
		zap.String("dir", m.seedDir),
		zap.Int("photos", album.PhotoCount()))
	return nil
}
