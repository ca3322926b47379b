package journal

import "os"

func writeBytes(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
