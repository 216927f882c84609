// Package files provides file system operations and discovery utilities
// for descstats.
//
// Manager resolves "output/", "figures/" and "logs/" prefixed paths against
// the configured directories and resets the per-dataset figure directories
// before charts are rendered. WriteFileAtomic backs every report and figure
// write so the HTTP server never serves a partial file.
//
// Discovery walks the figure tree for the HTTP server.
//
// Example usage:
//
//	manager := files.NewManager(paths, logger)
//	if err := manager.ResetDirectory("figures/fb_ads"); err != nil {
//	    return err
//	}
//
//	pngs, err := files.NewDiscovery(paths.FiguresDir).WalkFiles(".", ".png")
package files
