package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Submit writes one message into the daemon's inbox directory. The file is
// written under a .tmp name and renamed, so the watcher never reads a
// partial message. Returns the final file name.
func Submit(dir string, msg Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	name := fmt.Sprintf("%d-%s.json", time.Now().UnixNano(), msg.Type)
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write message: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return name, nil
}
