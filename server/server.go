package server

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type ServerConfig struct {
	// StoreDir is the root of the archive store served by the app.
	StoreDir string
}

type archiveFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

type archiveEntry struct {
	Group string        `json:"group"`
	Files []archiveFile `json:"files"`
}

// Returns a fiber.App instance serving the archive store read-only: a JSON
// listing of archived groups, file downloads, and the metrics endpoint.
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		stop := time.Now()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/archives", func(c *fiber.Ctx) error {
		entries, err := listArchives(config.StoreDir)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error listing archives")
			return c.Status(500).SendString("Error listing archives")
		}
		return c.JSON(entries)
	})

	app.Get("/archives/:group/:file", func(c *fiber.Ctx) error {
		// Base-name the params so the store directory cannot be escaped.
		group := filepath.Base(c.Params("group"))
		file := filepath.Base(c.Params("file"))

		path := filepath.Join(config.StoreDir, group, file)
		if _, err := os.Stat(path); err != nil {
			return c.Status(404).SendString("No such archive")
		}
		return c.SendFile(path)
	})

	return app
}

func listArchives(storeDir string) ([]archiveEntry, error) {
	groups, err := os.ReadDir(storeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []archiveEntry{}, nil
		}
		return nil, err
	}

	entries := []archiveEntry{}
	for _, group := range groups {
		if !group.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(storeDir, group.Name()))
		if err != nil {
			return nil, err
		}

		entry := archiveEntry{Group: group.Name(), Files: []archiveFile{}}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			info, err := file.Info()
			if err != nil {
				return nil, err
			}
			entry.Files = append(entry.Files, archiveFile{
				Name:     file.Name(),
				Size:     info.Size(),
				Modified: info.ModTime().UTC(),
			})
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
