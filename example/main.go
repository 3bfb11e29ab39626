package main

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdfannotate"
)

func main() {
	inputFlag := &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Input PDF file path",
		Required: true,
	}
	pageFlag := &cli.IntFlag{
		Name:  "page",
		Usage: "Page number (1-indexed)",
		Value: 1,
	}
	scaleFlag := &cli.FloatFlag{
		Name:  "scale",
		Usage: "Zoom factor (default from config)",
	}
	annotationsFlag := &cli.StringFlag{
		Name:    "annotations",
		Aliases: []string{"a"},
		Usage:   "Annotations JSON file",
	}

	cmd := &cli.Command{
		Name:  "pdfannotate",
		Usage: "Annotate PDF pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (trace, debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (json or console)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Print page sizes and native text runs",
				Flags:  []cli.Flag{inputFlag},
				Action: infoPDF,
			},
			{
				Name:  "render",
				Usage: "Render a page with annotations to PNG",
				Flags: []cli.Flag{
					inputFlag, pageFlag, scaleFlag, annotationsFlag,
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output PNG file path",
						Required: true,
					},
				},
				Action: renderPDF,
			},
			{
				Name:  "replay",
				Usage: "Replay a gesture script and write the resulting annotations",
				Flags: []cli.Flag{
					inputFlag,
					&cli.StringFlag{
						Name:     "script",
						Aliases:  []string{"s"},
						Usage:    "Gesture script (YAML or JSON)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output annotations JSON file path (default: stdout)",
					},
					&cli.StringFlag{
						Name:  "png",
						Usage: "Also render the final page to this PNG file",
					},
				},
				Action: replayScript,
			},
			{
				Name:  "export",
				Usage: "Send the PDF and annotations to the export service",
				Flags: []cli.Flag{
					inputFlag, annotationsFlag,
					&cli.StringFlag{
						Name:  "url",
						Usage: "Export service base URL (default from config)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output PDF file path (default: edited_<input>)",
					},
				},
				Action: exportPDF,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// session holds what every subcommand needs.
type session struct {
	config pdfannotate.Config
	logger *bolt.Logger
	doc    *pdfannotate.PDFDocument
	file   []byte
	close  func()
}

func openSession(cmd *cli.Command) (*session, error) {
	config := pdfannotate.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		var err error
		config, err = pdfannotate.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if level := cmd.String("log-level"); level != "" {
		config.Log.Level = level
	}
	if format := cmd.String("log-format"); format != "" {
		config.Log.Format = format
	}
	logger := pdfannotate.NewLogger(config.Log)

	inputPath := cmd.String("input")
	file, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise pdfium: %w", err)
	}

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	doc, err := pdfannotate.OpenDocument(instance, file)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &session{
		config: config,
		logger: logger,
		doc:    doc,
		file:   file,
		close: func() {
			doc.Close()
			pool.Close()
		},
	}, nil
}

func infoPDF(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Printf("Pages: %d\n", s.doc.PageCount())
	for page := 1; page <= s.doc.PageCount(); page++ {
		w, h, err := s.doc.PageSize(page)
		if err != nil {
			return err
		}
		runs, err := s.doc.TextRuns(ctx, page)
		if err != nil {
			return err
		}
		fmt.Printf("Page %d: %.1f x %.1f pt, %d text runs\n", page, w, h, len(runs))
	}
	return nil
}

func readAnnotations(path string) ([]pdfannotate.Annotation, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations: %w", err)
	}
	return pdfannotate.UnmarshalAnnotations(data)
}

func renderPDF(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	annotations, err := readAnnotations(cmd.String("annotations"))
	if err != nil {
		return err
	}
	store := pdfannotate.NewStore()
	for _, a := range annotations {
		if err := store.Add(a); err != nil {
			return fmt.Errorf("invalid annotation %s: %w", a.ID, err)
		}
	}

	page := cmd.Int("page")
	if page < 1 || page > s.doc.PageCount() {
		return fmt.Errorf("page %d out of range 1-%d", page, s.doc.PageCount())
	}
	scale := s.config.Zoom.Clamp(cmd.Float("scale"))

	return writeFrame(ctx, s, pdfannotate.RenderState{
		Page:        page,
		Scale:       scale,
		Annotations: store.List(page),
	}, cmd.String("output"))
}

func writeFrame(ctx context.Context, s *session, state pdfannotate.RenderState, path string) error {
	fonts, err := pdfannotate.NewFontBook()
	if err != nil {
		return err
	}
	painter := pdfannotate.NewPainter(fonts, s.config, s.logger)
	pipeline := pdfannotate.NewPipeline(s.doc, painter, s.logger)
	defer pipeline.Close()

	pipeline.Request(ctx, state)
	pipeline.Wait()
	frame := pipeline.Frame()
	if frame == nil {
		return fmt.Errorf("failed to render page %d", state.Page)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, frame.Composite()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Page %d written to %s\n", state.Page, path)
	return nil
}

func replayScript(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	script, err := pdfannotate.LoadScript(cmd.String("script"))
	if err != nil {
		return err
	}

	fonts, err := pdfannotate.NewFontBook()
	if err != nil {
		return err
	}
	editor, err := pdfannotate.NewEditor(s.config, fonts, s.logger)
	if err != nil {
		return err
	}
	if err := editor.Load(ctx, s.doc); err != nil {
		return err
	}
	if err := script.Run(ctx, editor, pdfannotate.NewSignatureComposer(fonts)); err != nil {
		return err
	}
	editor.CommitEdit()

	data, err := pdfannotate.MarshalAnnotations(editor.Annotations())
	if err != nil {
		return err
	}
	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Annotations written to %s\n", outputPath)
	} else {
		fmt.Println(string(data))
	}

	if pngPath := cmd.String("png"); pngPath != "" {
		return writeFrame(ctx, s, editor.RenderState(), pngPath)
	}
	return nil
}

func exportPDF(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	annotations, err := readAnnotations(cmd.String("annotations"))
	if err != nil {
		return err
	}
	if url := cmd.String("url"); url != "" {
		s.config.Export.BaseURL = url
	}

	inputPath := cmd.String("input")
	client := pdfannotate.NewExportClient(s.config.Export, nil, s.logger)
	out, err := client.Export(ctx, pdfannotate.ExportRequest{
		File:        s.file,
		FileName:    filepath.Base(inputPath),
		Annotations: annotations,
		Pages:       s.doc.PageCount(),
	})
	if err != nil {
		return err
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(inputPath), "edited_"+filepath.Base(inputPath))
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Edited PDF written to %s\n", outputPath)
	return nil
}
