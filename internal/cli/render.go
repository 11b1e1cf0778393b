package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
	bio "github.com/osumercury/badgemaker/pkg/io"
	"github.com/osumercury/badgemaker/pkg/pipeline"
	"github.com/osumercury/badgemaker/pkg/render"
	"github.com/osumercury/badgemaker/pkg/render/builtin"
	"github.com/osumercury/badgemaker/pkg/render/script"
	"github.com/osumercury/badgemaker/pkg/sink"
	"github.com/osumercury/badgemaker/pkg/source"
	"github.com/osumercury/badgemaker/pkg/source/local"
	"github.com/osumercury/badgemaker/pkg/source/mongo"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	pipeline.Options

	input    string   // roster file (csv, toml or json)
	settings string   // renderer settings file
	sets     []string // key=value property overrides
	script   string   // script file for the script renderer
	pngDir   string
	jpgDir   string
	tui      bool
	cache    cacheFlags

	size        bio.Size
	sizeChanged [3]bool // width, height, resolution given on the command line

	mongoURI        string
	mongoDB         string
	mongoCollection string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := newRenderOpts()

	cmd := &cobra.Command{
		Use:   "render [roster]",
		Short: "Render a roster to image files and/or a PDF",
		Long: `Render every badge of a roster.

The roster is a CSV, TOML or JSON file, or a MongoDB collection when
--mongo-uri is given. Each badge can be written as an image file (--png or
--jpg) and all badges can be packed onto the pages of a PDF (--pdf).

Renderer properties come from a settings file (--settings), the [renderer]
section of a TOML roster and --set, in that order; later values win.
Rendered badges are cached locally so repeated runs only redraw what changed.`,
		Example: `  badgemaker render teams.csv --png out/
  badgemaker render teams.csv --pdf badges.pdf --page A4 --units cm --margin 1 --spacing 0.2
  badgemaker render awards.toml --renderer certificate --pdf certificates.pdf --orientation landscape
  badgemaker render teams.csv --script badge.txt --set initial-font-size=180 --png out/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.input = args[0]
			}
			opts.markChanged(cmd)
			return c.runRender(cmd.Context(), opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func newRenderOpts() *renderOpts {
	opts := &renderOpts{size: bio.DefaultSize()}
	opts.Margin = pipeline.DefaultMargin
	opts.Spacing = pipeline.DefaultSpacing
	return opts
}

// register binds the render flags.
func (o *renderOpts) register(cmd *cobra.Command) {
	// Renderer flags
	cmd.Flags().StringVarP(&o.Renderer, "renderer", "r", "", "renderer: classic (default), certificate, script")
	cmd.Flags().StringVar(&o.script, "script", "", "script file (selects the script renderer)")
	cmd.Flags().StringArrayVar(&o.sets, "set", nil, "set a renderer property (key=value, repeatable)")
	cmd.Flags().StringVar(&o.settings, "settings", "", "renderer settings file (TOML)")
	cmd.Flags().StringVar(&o.Quality, "quality", pipeline.DefaultQuality, "scaling quality: high, fast")

	// Size flags
	cmd.Flags().Float64Var(&o.size.Width, "width", o.size.Width, "badge width in page units")
	cmd.Flags().Float64Var(&o.size.Height, "height", o.size.Height, "badge height in page units")
	cmd.Flags().Float64Var(&o.size.Resolution, "resolution", o.size.Resolution, "pixels per page unit")

	// Output flags
	cmd.Flags().StringVar(&o.pngDir, "png", "", "write one PNG per badge to this directory")
	cmd.Flags().StringVar(&o.jpgDir, "jpg", "", "write one JPEG per badge to this directory")
	cmd.Flags().StringVar(&o.PDFPath, "pdf", "", "pack all badges into this PDF")
	cmd.Flags().IntVar(&o.JPEGQuality, "jpeg-quality", pipeline.DefaultJPEGQuality, "JPEG quality (1-100)")
	cmd.Flags().BoolVar(&o.Lossless, "lossless", false, "embed PNG instead of JPEG in the PDF")

	// Page flags
	cmd.Flags().StringVar(&o.Page, "page", pipeline.DefaultPage, "page size: A0-A6, LETTER, LEGAL")
	cmd.Flags().StringVar(&o.Orientation, "orientation", pipeline.DefaultOrientation, "portrait or landscape")
	cmd.Flags().StringVar(&o.Units, "units", pipeline.DefaultUnits, "page units: in, cm, mm, pt")
	cmd.Flags().Float64Var(&o.Margin, "margin", o.Margin, "page margin")
	cmd.Flags().Float64Var(&o.Spacing, "spacing", o.Spacing, "space between badges")

	// Source flags
	cmd.Flags().StringVar(&o.mongoURI, "mongo-uri", "", "load the roster from MongoDB instead of a file")
	cmd.Flags().StringVar(&o.mongoDB, "mongo-db", appName, "MongoDB database")
	cmd.Flags().StringVar(&o.mongoCollection, "mongo-collection", "badges", "MongoDB collection")

	// Runtime flags
	o.cache.register(cmd)
	cmd.Flags().BoolVar(&o.tui, "tui", false, "show an interactive progress bar")
}

// markChanged records which size and page flags were given explicitly, so an
// explicit zero margin or spacing is not replaced by the default.
func (o *renderOpts) markChanged(cmd *cobra.Command) {
	flags := cmd.Flags()
	o.sizeChanged = [3]bool{flags.Changed("width"), flags.Changed("height"), flags.Changed("resolution")}
	o.MarginSet = flags.Changed("margin")
	o.SpacingSet = flags.Changed("spacing")
}

// resolve maps the output flags onto the pipeline options and validates them.
func (o *renderOpts) resolve() error {
	if o.input == "" && o.mongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no roster given (pass a file or --mongo-uri)")
	}
	if o.input != "" && o.mongoURI != "" {
		return errors.New(errors.ErrCodeInvalidInput, "pass either a roster file or --mongo-uri, not both")
	}
	if o.pngDir != "" && o.jpgDir != "" {
		return errors.New(errors.ErrCodeInvalidInput, "choose one of --png or --jpg")
	}

	o.Formats = nil
	switch {
	case o.pngDir != "":
		o.OutputDir = o.pngDir
		o.Formats = append(o.Formats, pipeline.FormatPNG)
	case o.jpgDir != "":
		o.OutputDir = o.jpgDir
		o.Formats = append(o.Formats, pipeline.FormatJPG)
	}
	if o.PDFPath != "" {
		o.Formats = append(o.Formats, pipeline.FormatPDF)
	}
	return o.ValidateForExport()
}

// configure merges the renderer configuration. Sources are applied in
// increasing priority: settings, then flags.
func (o *renderOpts) configure(settings *bio.Settings) error {
	props := make(map[string]string)
	name := ""
	if settings != nil {
		name = settings.Renderer.Name
		for k, v := range settings.Renderer.PropertyStrings() {
			props[k] = v
		}
	}
	if o.script != "" {
		name = script.Name
		props[script.PropScriptFile] = o.script
	}
	overrides, err := parseAssignments(o.sets)
	if err != nil {
		return err
	}
	for k, v := range overrides {
		props[k] = v
	}
	if o.Renderer == "" {
		o.Renderer = name
	}
	if o.Renderer == "" {
		o.Renderer = builtin.DefaultRenderer
	}
	o.Properties = props
	return nil
}

// badgeSize returns the size applied to every badge: the settings size with
// any dimension given on the command line taking precedence.
func (o *renderOpts) badgeSize(settings *bio.Settings) (bio.Size, error) {
	size := o.size
	if settings != nil && settings.Size != nil {
		base := *settings.Size
		if !o.sizeChanged[0] {
			size.Width = base.Width
		}
		if !o.sizeChanged[1] {
			size.Height = base.Height
		}
		if !o.sizeChanged[2] {
			size.Resolution = base.Resolution
		}
	}
	return size, size.Validate()
}

// parseAssignments parses key=value pairs. Keys are trimmed; values are kept
// verbatim so that scripts and colors may contain spaces.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid --set %q (want key=value)", pair)
		}
		out[k] = v
	}
	return out, nil
}

// runRender loads the roster, renders it and writes the requested outputs.
func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	if err := opts.resolve(); err != nil {
		return err
	}
	opts.Logger = c.Logger
	opts.NoCache = opts.cache.noCache

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	readOpts := bio.ReadOptions{Images: runner.Images, Logger: c.Logger}
	badges, settings, err := c.loadRoster(ctx, opts, readOpts)
	if err != nil {
		return err
	}
	if opts.settings != "" {
		s, err := bio.LoadSettings(opts.settings)
		if err != nil {
			return err
		}
		settings = mergeSettings(&s, settings)
	}
	if len(badges) == 0 {
		printWarning("Roster is empty, nothing to render")
		return nil
	}

	if err := opts.configure(settings); err != nil {
		return err
	}
	size, err := opts.badgeSize(settings)
	if err != nil {
		return err
	}
	for _, b := range badges {
		size.Apply(b)
	}

	rend, err := runner.Prepare(builtin.Registry(), opts.Options)
	if err != nil {
		return err
	}
	c.Logger.Debug("render options", "options", opts.Options.String(), "badges", len(badges))

	prog := newProgress(c.Logger)
	job := runner.Start(ctx, func(ctx context.Context, p *pipeline.Progress) (*pipeline.Result, error) {
		return export(ctx, runner, rend, badges, &opts.Options, p)
	})

	title := fmt.Sprintf("Rendering %d badges with %s", len(badges), rend.Name())
	res, err := follow(ctx, job, title, opts.tui)
	if err != nil {
		return err
	}
	if res.Cancelled {
		printWarning("Cancelled after %d of %d badges", res.Rendered, res.Total)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New(errors.ErrCodeCancelled, "batch cancelled")
	}

	prog.done(fmt.Sprintf("Exported %d badges", res.Rendered))
	printSuccess("Rendered %d badges", res.Rendered)
	printStats(res)
	if len(res.Paths) > 0 {
		printFile(opts.OutputDir)
	}
	if opts.WantsFormat(pipeline.FormatPDF) {
		printFile(opts.PDFPath)
	}
	return nil
}

// loadRoster reads badges from the file or MongoDB source. Only TOML batch
// files carry settings.
func (c *CLI) loadRoster(ctx context.Context, opts *renderOpts, readOpts bio.ReadOptions) ([]*badge.Badge, *bio.Settings, error) {
	if opts.mongoURI == "" {
		src := local.New(opts.input, readOpts)
		badges, err := loadWithSpinner(ctx, src, "Loading "+opts.input+"...")
		if err != nil {
			return nil, nil, err
		}
		return badges, src.Settings(), nil
	}

	client, err := mongo.Connect(ctx, opts.mongoURI)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	src := mongo.New(client, opts.mongoDB, opts.mongoCollection, mongo.WithReadOptions(readOpts))
	badges, err := loadWithSpinner(ctx, src, "Loading "+opts.mongoDB+"."+opts.mongoCollection+"...")
	return badges, nil, err
}

func loadWithSpinner(ctx context.Context, src source.Source, message string) ([]*badge.Badge, error) {
	spinner := newSpinnerWithContext(ctx, message)
	spinner.Start()
	badges, err := src.Load(ctx)
	if err != nil {
		spinner.StopWithError("Failed to load roster")
		return nil, err
	}
	spinner.Stop()
	return badges, nil
}

// mergeSettings overlays roster settings on top of a settings file.
func mergeSettings(file, roster *bio.Settings) *bio.Settings {
	if roster == nil {
		return file
	}
	out := *file
	if roster.Size != nil {
		out.Size = roster.Size
	}
	if roster.Renderer.Name != "" {
		out.Renderer.Name = roster.Renderer.Name
	}
	props := make(map[string]any, len(file.Renderer.Properties)+len(roster.Renderer.Properties))
	for k, v := range file.Renderer.Properties {
		props[k] = v
	}
	for k, v := range roster.Renderer.Properties {
		props[k] = v
	}
	out.Renderer.Properties = props
	return &out
}

// export runs the image and document batches requested by opts. When both
// are requested the document pass reuses the rasters of the image pass.
func export(ctx context.Context, runner *pipeline.Runner, rend render.Renderer, badges []*badge.Badge, opts *pipeline.Options, p *pipeline.Progress) (*pipeline.Result, error) {
	var res *pipeline.Result
	if format, ok := opts.ImageFormat(); ok {
		dir, err := sink.NewDirSink(opts.OutputDir, sink.WithFormat(format), sink.WithJPEGQuality(opts.JPEGQuality))
		if err != nil {
			return nil, err
		}
		res, err = runner.ExportImages(ctx, rend, badges, dir, p)
		if err != nil || res.Cancelled {
			return res, err
		}
	}

	if !opts.WantsFormat(pipeline.FormatPDF) {
		return res, nil
	}
	spec, units, err := opts.PageSpec()
	if err != nil {
		return nil, err
	}
	doc := sink.NewPDF(opts.PDFPath, sink.WithLossless(opts.Lossless), sink.WithPDFJPEGQuality(opts.JPEGQuality))
	docRes, err := runner.ExportDocument(ctx, rend, badges, doc, spec, units, p)
	if err != nil || res == nil {
		return docRes, err
	}
	return mergeResults(res, docRes), nil
}

// mergeResults combines an image pass with the document pass that followed it.
func mergeResults(images, doc *pipeline.Result) *pipeline.Result {
	return &pipeline.Result{
		Total:     doc.Total,
		Rendered:  doc.Rendered,
		CacheHits: images.CacheHits,
		Paths:     images.Paths,
		Pages:     doc.Pages,
		Cancelled: doc.Cancelled,
		Duration:  images.Duration + doc.Duration,
	}
}

// follow waits for job, showing either the spinner or the progress TUI.
func follow(ctx context.Context, job *pipeline.Job, title string, tui bool) (*pipeline.Result, error) {
	if tui {
		return runProgressTUI(title, job)
	}

	spinner := newSpinnerWithContext(ctx, title+"...")
	job.Progress.Subscribe(func(s pipeline.Snapshot) {
		if s.Text != "" {
			spinner.SetMessage(s.Text)
		}
	})
	spinner.Start()
	res, err := job.Wait()
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, err
	}
	spinner.Stop()
	return res, nil
}
