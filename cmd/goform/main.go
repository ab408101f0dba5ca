package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/delivery"
	"github.com/reoring/goform/formdef"
	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/internal/config"
	"github.com/reoring/goform/jsonschema"
	"github.com/reoring/goform/render/term"
	"github.com/reoring/goform/sink"
	"github.com/reoring/goform/sink/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	var code int
	switch sub {
	case "validate":
		code = validateCmd(os.Args[2:])
	case "submit":
		code = submitCmd(os.Args[2:])
	case "render":
		code = renderCmd(os.Args[2:])
	case "schema":
		code = schemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "goform CLI\n\nUsage:\n  goform validate -form NAME [-values values.json] [-forms forms.yaml]\n  goform submit   -form NAME [-values values.json] [-forms forms.yaml] [-db goform.db]\n  goform render   -form NAME [-values values.json] [-forms forms.yaml] [-submit]\n  goform schema   -form NAME [-forms forms.yaml]\n\nCommon flags:\n  -config FILE  config file (also GOFORM_CONFIG)\n  -v            debug logs on stderr\n\nValues are a flat JSON object; \"-\" reads stdin. Exit status 1 means the form was not accepted.")
}

// common holds flags shared by every subcommand.
type common struct {
	configPath string
	formsPath  string
	form       string
	valuesPath string
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file")
	fs.StringVar(&c.formsPath, "forms", "", "form definitions YAML (overrides forms.path)")
	fs.StringVar(&c.form, "form", "", "form name")
	fs.StringVar(&c.valuesPath, "values", "", "values JSON file, - for stdin")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

// session is a loaded configuration plus the definition selected by -form.
type session struct {
	cfg    config.Config
	def    formdef.Definition
	values goform.ValueMap
	logger *slog.Logger
}

func (c *common) open() *session {
	if c.form == "" {
		fatalf("-form is required")
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fatalf("%v", err)
	}
	if c.formsPath != "" {
		cfg.Forms.Path = c.formsPath
	}
	i18n.SetLanguage(cfg.UI.Language)

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	defs, err := formdef.LoadFile(cfg.Forms.Path)
	if err != nil {
		fatalf("load %s: %v", cfg.Forms.Path, err)
	}
	def, err := formdef.Find(defs, c.form)
	if err != nil {
		fatalf("%v", err)
	}
	values := goform.ValueMap{}
	if c.valuesPath != "" {
		values, err = readValues(c.valuesPath)
		if err != nil {
			fatalf("read values: %v", err)
		}
	}
	return &session{cfg: cfg, def: def, values: values, logger: logger}
}

func readValues(path string) (goform.ValueMap, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return goform.UnmarshalValues(data)
}

// build mounts the form and types every value into its control, in field order.
func (s *session) build(env formdef.BuildEnv) (*goform.Form, *formdef.Controls) {
	env.Logger = s.logger
	if env.LoadingDelay == 0 {
		env.LoadingDelay = s.cfg.UI.LoadingDelay
	}
	f, cs, err := s.def.Build(env)
	if err != nil {
		fatalf("%v", err)
	}
	for name := range s.values {
		if _, ok := cs.Inputs[name]; !ok {
			fatalf("%s: %v", s.def.Form, &formdef.UnknownNameError{
				Kind: "field", Name: name, Suggestion: formdef.Suggest(name, s.def.FieldNames()),
			})
		}
	}
	for _, name := range s.def.FieldNames() {
		v, ok := s.values[name]
		if !ok {
			continue
		}
		raw := v.String()
		if b, isBool := v.Bool(); isBool {
			raw = strconv.FormatBool(b)
		}
		if err := cs.Input(name, raw); err != nil {
			fatalf("%s.%s: %v", s.def.Form, name, err)
		}
	}
	return f, cs
}

type report struct {
	Form    string          `json:"form"`
	Outcome string          `json:"outcome"`
	Errors  goform.ErrorMap `json:"errors"`
	Values  goform.ValueMap `json:"values,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func emit(r report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		fatalf("encode: %v", err)
	}
}

func exitCode(out goform.Outcome) int {
	if out == goform.OutcomeSucceeded {
		return 0
	}
	return 1
}

// validateCmd runs the form's rules without storing anything.
func validateCmd(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)
	s := c.open()

	f, _ := s.build(formdef.BuildEnv{})
	out, err := f.Submit(context.Background())
	r := report{Form: s.def.Form, Outcome: out.String(), Errors: f.Errors()}
	if err != nil {
		r.Error = err.Error()
	}
	emit(r)
	return exitCode(out)
}

// submitCmd validates and stores the values, sending codes through the log.
func submitCmd(args []string) int {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var c common
	var dbPath string
	var timeout time.Duration
	c.register(fs)
	fs.StringVar(&dbPath, "db", "", "sqlite database (overrides sink.path; empty keeps submissions in memory)")
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "submit timeout")
	_ = fs.Parse(args)
	s := c.open()
	if dbPath != "" {
		s.cfg.Sink.Path = dbPath
	}

	var (
		snk   sink.Sink
		codes delivery.CodeStore
	)
	if s.cfg.Sink.Path != "" {
		db, err := sqlite.Open(s.cfg.Sink.Path)
		if err != nil {
			fatalf("open %s: %v", s.cfg.Sink.Path, err)
		}
		defer db.Close()
		snk, codes = db, db
	} else {
		snk, codes = sink.NewMemory(), delivery.NewMemoryCodes()
	}
	issuer := delivery.NewIssuer(codes, delivery.LogSender{Logger: s.logger},
		delivery.IssuerOpt{TTL: s.cfg.Delivery.CodeTTL, Logger: s.logger})

	f, _ := s.build(formdef.BuildEnv{Sink: snk, Issuer: issuer})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := f.Submit(ctx)
	r := report{Form: s.def.Form, Outcome: out.String(), Errors: f.Errors()}
	if out == goform.OutcomeSucceeded {
		r.Values = f.Values()
	}
	if err != nil {
		r.Error = err.Error()
	}
	emit(r)
	return exitCode(out)
}

// renderCmd draws the form's controls to stdout.
func renderCmd(args []string) int {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var c common
	var submit bool
	c.register(fs)
	fs.BoolVar(&submit, "submit", false, "validate before rendering so errors show")
	_ = fs.Parse(args)
	s := c.open()

	f, cs := s.build(formdef.BuildEnv{LoadingDelay: -1})
	defer f.Unmount()
	code := 0
	if submit {
		out, _ := f.Submit(context.Background())
		code = exitCode(out)
	}
	r := term.New(os.Stdout, term.WithWidth(s.cfg.UI.Width))
	if err := control.RenderAll(r, cs.All()...); err != nil {
		fatalf("render: %v", err)
	}
	return code
}

// schemaCmd prints the JSON Schema of the values the form submits.
func schemaCmd(args []string) int {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)
	s := c.open()

	sch, err := jsonschema.FromDefinition(s.def)
	if err != nil {
		fatalf("%v", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sch); err != nil {
		fatalf("encode: %v", err)
	}
	return 0
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "goform: "+format+"\n", a...)
	os.Exit(1)
}
