// seed aprovisiona un tenant: crea su almacén central (idempotente) y los sectores indicados.
//
// Uso:
//
//	go run ./cmd/seed -tenant <company_id> [-defaults] [-file sectores.txt -charset latin1] [-token] [Sector ...]
//
// Los nombres llegan por archivo (uno por línea), por argumentos o con -defaults (Kitchen, Bar, Salon Stock).
// Un sector ya existente se omite. Con -token imprime un JWT de administrador para pruebas locales.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-stock/pkg/config"
	"github.com/jhoicas/erp-stock/pkg/jwt"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

func main() {
	tenantID := flag.String("tenant", "", "company_id del tenant (obligatorio)")
	file := flag.String("file", "", "archivo con un nombre de sector por línea")
	charset := flag.String("charset", "utf-8", "codificación del archivo (utf-8, latin1, windows-1252)")
	defaults := flag.Bool("defaults", false, "crear también Kitchen, Bar y Salon Stock")
	printToken := flag.Bool("token", false, "imprimir un JWT de administrador para el tenant")
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "falta -tenant")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.DB.Driver != "postgres" {
		log.Fatal().Str("driver", cfg.DB.Driver).Msg("el seed solo tiene sentido contra PostgreSQL")
	}

	var fromFile []string
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("abrir archivo de sectores")
		}
		fromFile, err = readSectorNames(f, *charset)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("leer archivo de sectores")
		}
	}
	var fromDefaults []string
	if *defaults {
		fromDefaults = defaultSectors
	}
	names := mergeNames(fromDefaults, fromFile, flag.Args())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	sectorUC := usecase.NewSectorUseCase(postgres.NewTxRunner(pool), postgres.NewRepos(pool), nil, log)
	if err := seed(ctx, sectorUC, *tenantID, cfg.Stock.CentralSectorName, names, log); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}

	if *printToken {
		token, err := jwt.Generate(cfg.JWT.Secret, jwt.Identity{
			UserID:   uuid.New().String(),
			TenantID: *tenantID,
			Role:     "admin",
		}, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Println(token)
	}
}

func seed(ctx context.Context, uc *usecase.SectorUseCase, tenantID, centralName string, names []string, log *logger.Logger) error {
	central, err := uc.EnsureCentral(ctx, tenantID, centralName)
	if err != nil {
		return fmt.Errorf("almacén central: %w", err)
	}
	log.Info().Str("tenant_id", tenantID).Str("sector_id", central.ID).Str("name", central.Name).Msg("almacén central listo")

	created := 0
	for _, name := range names {
		if name == central.Name {
			continue
		}
		s, err := uc.Create(ctx, tenantID, dto.CreateSectorRequest{Name: name})
		if errors.Is(err, domain.ErrConflict) {
			log.Info().Str("name", name).Msg("sector existente, se omite")
			continue
		}
		if err != nil {
			return fmt.Errorf("sector %q: %w", name, err)
		}
		created++
		log.Info().Str("sector_id", s.ID).Str("name", s.Name).Msg("sector creado")
	}
	log.Info().Int("created", created).Int("requested", len(names)).Msg("seed terminado")
	return nil
}
