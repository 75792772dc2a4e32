package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ReinoScreech/roblox-wall-archive/models"
)

// Version is written as the first line of every archive.
const Version = "RGWA Revision 2.0"

const licenseFileName = "LICENSE.txt"

const licenseText = `~~~~~~~~~~
    This file was automatically generated by RGWA.
    It is licensed under the CC BY-ND 4.0 (Attribution-NoDerivatives) license.
    https://creativecommons.org/licenses/by-nd/4.0/

    You are free to share this file, but you may not
    modify, change, or remix its contents unless explicitly labeled.
    This license is put in place to ensure posts are preserved exactly
    as they are written to prevent attempts at defamation, harassment,
    or misrepresentation.

    This automated capture is created to be intended as a factual
    historical record and any redistributed or altered versions must
    clearly indicate they are unofficial to avoid problems stated
    above.

    Thank you for your cooperation!
~~~~~~~~~~`

// Writer persists one crawl as a flat text file inside its own folder under
// the store directory. Each run overwrites the archive file; the license
// notice next to it is written once and then left alone.
type Writer struct {
	StoreDir  string
	GroupID   int64
	GroupName string
}

// Write persists records and returns the archive file path. An empty record
// set is a warning and a no-op, not an error. Records are expected newest
// first, as the paginator accumulates them.
func (w *Writer) Write(records []models.Record, pages int, outcome models.Outcome) (string, error) {
	if len(records) == 0 {
		log.WithFields(log.Fields{
			"group": w.GroupID,
		}).Warn("Group wall has no posts, nothing to archive")
		return "", nil
	}

	// Newest first, so the oldest post is the final record.
	first := records[len(records)-1]
	last := records[0]

	folder := fmt.Sprintf("%s_%d", w.GroupName, w.GroupID)
	groupDir := filepath.Join(w.StoreDir, folder)
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive folder: %w", err)
	}

	if err := writeLicense(groupDir); err != nil {
		return "", err
	}

	var doc strings.Builder
	doc.WriteString(w.header(pages, outcome, first, last))
	for _, record := range records {
		doc.WriteString(record.Text)
		doc.WriteByte('\n')
	}

	archivePath := filepath.Join(groupDir, folder+".txt")
	if err := os.WriteFile(archivePath, []byte(doc.String()), 0o644); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}

	log.WithFields(log.Fields{
		"path":  archivePath,
		"posts": len(records),
	}).Info("Archival process completed")

	return archivePath, nil
}

func (w *Writer) header(pages int, outcome models.Outcome, first, last models.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", Version)
	b.WriteString("NOTE:\n")
	b.WriteString("This archive is an automated capture of a Roblox group wall.\n")
	b.WriteString("It is intended as a factual historical record. Any redistributed\n")
	b.WriteString("or altered versions must clearly indicate they are unofficial\n")
	b.WriteString("to avoid misleading or defaming individuals.\n")
	b.WriteString("Please read the LICENSE.txt file for more information.\n\n")
	fmt.Fprintf(&b, "This is the GROUP WALL for %s - https://www.roblox.com/communities/%d/%s#!/about\n\n",
		w.GroupName, w.GroupID, w.GroupName)
	fmt.Fprintf(&b, "Archived %s UTC\n", time.Now().UTC().Format("Jan 02, 2006, 03:04 PM"))
	fmt.Fprintf(&b, "Capture ID: %s\n\n", uuid.New())
	b.WriteString("Date and Time presumably set to UTC.\n\n")

	if outcome != models.Complete {
		b.WriteString("WARNING:\n")
		b.WriteString("This capture was stopped before reaching the end of the wall\n")
		b.WriteString("and is INCOMPLETE. Older posts may be missing.\n\n")
	}

	b.WriteString("INFORMATION:\n")
	b.WriteString("This is an AUTOMATED ARCHIVE. You should have a copy of the automated tool used for this process.\n")
	fmt.Fprintf(&b, "About %d page(s) have been archived in this wall.\n", pages)
	fmt.Fprintf(&b, "The first message was @ %s | %s\n", first.Date, first.Time)
	fmt.Fprintf(&b, "The last message was @ %s | %s\n\n", last.Date, last.Time)
	b.WriteString("CONTENT:\n")

	return b.String()
}

func writeLicense(groupDir string) error {
	licensePath := filepath.Join(groupDir, licenseFileName)
	if _, err := os.Stat(licensePath); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat license file: %w", err)
	}
	if err := os.WriteFile(licensePath, []byte(licenseText), 0o644); err != nil {
		return fmt.Errorf("write license file: %w", err)
	}
	return nil
}
