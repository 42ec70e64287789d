// Command foodgram-cli runs administrative tasks against the Foodgram database.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/and161185/foodgram/internal/config"
	"github.com/and161185/foodgram/internal/convert"
	"github.com/and161185/foodgram/internal/migrate"
	"github.com/and161185/foodgram/internal/repository/postgres"
	"github.com/and161185/foodgram/internal/service"
)

// ---- input files ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func isJSON(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return true
	case ".csv":
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("["))
}

// parseIngredients accepts a JSON array of {name, measurement_unit} or CSV
// rows of name,unit with an optional header line.
func parseIngredients(name string, data []byte) ([]convert.IngredientImportDTO, error) {
	if isJSON(name, data) {
		var out []convert.IngredientImportDTO
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return out, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	out := make([]convert.IngredientImportDTO, 0, len(rows))
	for i, row := range rows {
		if i == 0 && strings.EqualFold(row[0], "name") {
			continue
		}
		out = append(out, convert.IngredientImportDTO{Name: row[0], MeasurementUnit: row[1]})
	}
	return out, nil
}

func parseTags(name string, data []byte) ([]convert.TagImportDTO, error) {
	var out []convert.TagImportDTO
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return out, nil
}

// ---- health ----

func checkHealth(ctx context.Context, addr, svc string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	defer cc.Close()
	resp, err := healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `foodgram-cli
Usage:
  foodgram-cli [-config file] [-dsn DSN] <cmd> [args]

Commands:
  version
  migrate            up | down                 (down reverts the last migration)
  import-ingredients <file.csv|file.json|->
  import-tags        <file.json|->
  promote            -email <email> [-revoke]  (grant or revoke staff rights)
  healthcheck        [-addr HOST:PORT] [-service NAME]
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands; everything except healthcheck talks to PostgreSQL directly.
func main() {
	// global flags
	cfgPath := flag.String("config", "", "config file (default: $FOODGRAM_CONFIG or ./config.yaml)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		fail(err)
	}
	if *dsn != "" {
		cfg.DB.DSN = *dsn
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("foodgram-cli %s (%s)\n", version, buildDate)

	case "migrate":
		log, err := cfg.Log.Logger()
		if err != nil {
			fail(err)
		}
		dir := "up"
		if len(args) > 0 {
			dir = args[0]
		}
		switch dir {
		case "up":
			err = migrate.Up(ctx, cfg.DB.DSN, log)
		case "down":
			err = migrate.Down(ctx, cfg.DB.DSN, log)
		default:
			usage()
		}
		if err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "import-ingredients":
		if len(args) != 1 {
			usage()
		}
		data, err := readAll(args[0])
		if err != nil {
			fail(err)
		}
		items, err := parseIngredients(args[0], data)
		if err != nil {
			fail(err)
		}
		catalog, closeDB := openCatalog(ctx, cfg.DB.DSN)
		defer closeDB()
		n, err := catalog.ImportIngredients(ctx, convert.FromIngredientImports(items))
		if err != nil {
			fail(err)
		}
		printJSON(map[string]int{"read": len(items), "created": n})

	case "import-tags":
		if len(args) != 1 {
			usage()
		}
		data, err := readAll(args[0])
		if err != nil {
			fail(err)
		}
		items, err := parseTags(args[0], data)
		if err != nil {
			fail(err)
		}
		catalog, closeDB := openCatalog(ctx, cfg.DB.DSN)
		defer closeDB()
		n, err := catalog.ImportTags(ctx, convert.FromTagImports(items))
		if err != nil {
			fail(err)
		}
		printJSON(map[string]int{"read": len(items), "created": n})

	case "promote":
		fs := flag.NewFlagSet("promote", flag.ExitOnError)
		email := fs.String("email", "", "user email")
		revoke := fs.Bool("revoke", false, "revoke staff rights instead")
		_ = fs.Parse(args)
		if *email == "" {
			fmt.Fprintln(os.Stderr, "need -email")
			os.Exit(1)
		}
		db, err := postgres.New(ctx, cfg.DB.DSN)
		if err != nil {
			fail(err)
		}
		defer db.Close()
		if err := postgres.NewUserRepo(db).SetStaff(ctx, *email, !*revoke); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "healthcheck":
		fs := flag.NewFlagSet("healthcheck", flag.ExitOnError)
		addr := fs.String("addr", dialAddr(cfg.GRPC.HealthAddr), "health listener address")
		svc := fs.String("service", "", "service name (empty for overall status)")
		_ = fs.Parse(args)
		hctx, hcancel := context.WithTimeout(ctx, 5*time.Second)
		defer hcancel()
		st, err := checkHealth(hctx, *addr, *svc)
		if err != nil {
			fail(err)
		}
		fmt.Println(st)
		if st != healthpb.HealthCheckResponse_SERVING {
			os.Exit(1)
		}

	default:
		usage()
	}
}

func openCatalog(ctx context.Context, dsn string) (service.CatalogService, func()) {
	db, err := postgres.New(ctx, dsn)
	if err != nil {
		fail(err)
	}
	return service.NewCatalogService(postgres.NewCatalogRepo(db)), db.Close
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// dialAddr turns a listen address such as ":8081" into one a client can dial.
func dialAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
