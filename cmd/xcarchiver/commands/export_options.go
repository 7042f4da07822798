package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/xcarchiver/internal/config"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/exportoptions"
)

// ExportOptionsCmd implements the 'export-options' command.
type ExportOptionsCmd struct {
	ConfigFlags `embed:""`

	Output string `name:"output" help:"Write the plist to this file instead of stdout" type:"path"`
}

func (e *ExportOptionsCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, e.ConfigFlags, root.Verbose)
	if err != nil {
		return err
	}
	if e.Output != "" {
		return WriteExportOptions(cfg, e.Output)
	}
	return PrintExportOptions(cfg, os.Stdout)
}

// PrintExportOptions writes the synthesized export options plist to w.
func PrintExportOptions(cfg *config.Config, w io.Writer) error {
	doc, err := exportoptions.SynthesizeAndBackfill(cfg)
	if err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return derrors.InternalError("encode export options", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteExportOptions writes the synthesized export options plist to path.
func WriteExportOptions(cfg *config.Config, path string) error {
	doc, err := exportoptions.SynthesizeAndBackfill(cfg)
	if err != nil {
		return err
	}
	if err := doc.WriteFile(path); err != nil {
		return derrors.FileSystemError("write export options", path, err)
	}
	fmt.Printf("Wrote export options to %s\n", path)
	return nil
}
