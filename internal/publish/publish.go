package publish

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Pipeline output names, shared with the subcommands that write them.
const (
	GlobalDataFile = "global_data.csv"
	MxDataFile     = "mx_data.csv"
	MxArchiveFile  = "mx_data.zip"
)

// Run collects the pipeline outputs from srcDir into destDir. The global
// CSV moves as-is; the line list CSV is zipped because it is too large to
// serve raw, and the source file is removed once archived.
func Run(srcDir, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	globalDest := filepath.Join(destDir, GlobalDataFile)
	if err := moveFile(filepath.Join(srcDir, GlobalDataFile), globalDest); err != nil {
		return err
	}
	log.Printf("publish: moved %s", globalDest)

	mxSrc := filepath.Join(srcDir, MxDataFile)
	mxDest := filepath.Join(destDir, MxArchiveFile)
	if err := zipFile(mxSrc, mxDest); err != nil {
		return err
	}
	if err := os.Remove(mxSrc); err != nil {
		return fmt.Errorf("remove %s: %w", mxSrc, err)
	}
	log.Printf("publish: wrote %s", mxDest)
	return nil
}

// moveFile renames src to dest, copying when the destination is on another
// filesystem.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}

func zipFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	zw := zip.NewWriter(out)
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(src),
		Method: zip.Deflate,
	})
	if err != nil {
		out.Close()
		return fmt.Errorf("create archive entry: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		out.Close()
		return fmt.Errorf("archive %s: %w", src, err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("archive %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("archive %s: %w", src, err)
	}
	return nil
}
