// cvctl is the operator tool for the CV fields service: seed a user with
// the default field set, or backfill missing translations.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cv-fields/internal/config"
	"cv-fields/internal/field"
	"cv-fields/internal/storage"
	"cv-fields/internal/translate"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cvctl",
		Short: "Operator tool for the CV fields service",
		Long: `cvctl is the operator tool for the CV fields service.

Commands:
  seed         Create a user with the default CV field set
  retranslate  Fill missing translations for a user's fields`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSeedCmd(),
		newRetranslateCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Println("Error:", err)
		os.Exit(1)
	}
}

func openDB() (*storage.DB, *config.Config, error) {
	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("set DATABASE_URL environment variable")
	}
	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, cfg, nil
}

// ---------------------------------------------------------------------------
// seed (create a user with the default field set)
// ---------------------------------------------------------------------------

// defaultFields is the classic French CV template: identity and contact
// scalars, three experience blocks, two education blocks, primary language.
var defaultFields = []struct {
	id, name, tag string
	typ           field.Type
}{
	{"prenom", "Prénom", "PRENOM", field.TypeText},
	{"nom", "Nom", "NOM", field.TypeText},
	{"email", "Email", "EMAIL", field.TypeText},
	{"telephone", "Téléphone", "TELEPHONE", field.TypeText},
	{"adresse", "Adresse", "ADRESSE", field.TypeText},
	{"codepostal", "Code postal", "CODE_POSTAL", field.TypeText},
	{"ville", "Ville", "VILLE", field.TypeText},
	{"pays", "Pays", "PAYS", field.TypeText},
	{"datenaissance", "Date de naissance", "DATE_NAISSANCE", field.TypeDate},
	{"poste", "Poste recherché", "POSTE", field.TypeText},
	{"resume", "Résumé", "RESUME", field.TypeText},
	{"competences", "Compétences", "COMPETENCES", field.TypeText},
	{"langue", "Langue principale", "LANGUE", field.TypeText},
	{"niveaulangue", "Niveau de langue", "NIVEAU_LANGUE", field.TypeText},

	{"xp01entreprise", "Expérience 1 - Entreprise", "xp01entreprise", field.TypeText},
	{"xp01poste", "Expérience 1 - Poste", "xp01poste", field.TypeText},
	{"xp01datedebut", "Expérience 1 - Date début", "xp01datedebut", field.TypeDate},
	{"xp01datefin", "Expérience 1 - Date fin", "xp01datefin", field.TypeDate},
	{"xp01mission", "Expérience 1 - Mission", "xp01mission", field.TypeText},
	{"xp02entreprise", "Expérience 2 - Entreprise", "xp02entreprise", field.TypeText},
	{"xp02poste", "Expérience 2 - Poste", "xp02poste", field.TypeText},
	{"xp02datedebut", "Expérience 2 - Date début", "xp02datedebut", field.TypeDate},
	{"xp02datefin", "Expérience 2 - Date fin", "xp02datefin", field.TypeDate},
	{"xp02mission", "Expérience 2 - Mission", "xp02mission", field.TypeText},
	{"xp03entreprise", "Expérience 3 - Entreprise", "xp03entreprise", field.TypeText},
	{"xp03poste", "Expérience 3 - Poste", "xp03poste", field.TypeText},
	{"xp03mission", "Expérience 3 - Mission", "xp03mission", field.TypeText},

	{"form01diplome", "Formation 1 - Diplôme", "form01diplome", field.TypeText},
	{"form01ecole", "Formation 1 - École", "form01ecole", field.TypeText},
	{"form01datedebut", "Formation 1 - Date début", "form01DateDebutFormation", field.TypeDate},
	{"form01datefin", "Formation 1 - Date fin", "form01DateFinFormation", field.TypeDate},
	{"form02diplome", "Formation 2 - Diplôme", "form02diplome", field.TypeText},
	{"form02ecole", "Formation 2 - École", "form02ecole", field.TypeText},
}

func newSeedCmd() *cobra.Command {
	var userID, language string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a user with the default CV field set",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return runSeed(db, userID, language)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to create (required)")
	cmd.Flags().StringVar(&language, "language", "fr", "Working language for the new user")
	cmd.MarkFlagRequired("user")

	return cmd
}

func runSeed(db *storage.DB, userID, language string) error {
	if !field.IsSupportedLanguage(language) {
		return fmt.Errorf("unsupported language %q", language)
	}

	ctx := context.Background()
	if exists, err := db.UserExists(ctx, userID); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("user %s already exists", userID)
	}

	now := time.Now().UTC()
	u := field.User{ID: userID, BaseLanguage: language, CreatedAt: now, UpdatedAt: now}
	for _, d := range defaultFields {
		f := field.New(d.name, d.tag, d.typ, language, now)
		f.ID = d.id
		u.Data = append(u.Data, f)
	}

	if err := db.SaveUserContext(ctx, u); err != nil {
		return err
	}
	log.Printf("Created user %s with %d fields (working language %s)", userID, len(u.Data), language)
	return nil
}

// ---------------------------------------------------------------------------
// retranslate (backfill missing translations)
// ---------------------------------------------------------------------------

func newRetranslateCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "retranslate",
		Short: "Fill missing translations for a user's fields",
		Long: `Walk every field of a user and translate version slots that have a
working-language value but no translation in some supported language.
Existing translations are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			translator, err := translate.NewTranslator(cfg.TranslatorProvider, cfg.TranslatorAPIKey, cfg.TranslatorBaseURL)
			if err != nil {
				return err
			}
			return runRetranslate(db, translator, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to backfill (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func runRetranslate(db *storage.DB, translator translate.Translator, userID string) error {
	ctx := context.Background()

	u, err := db.GetUserContext(ctx, userID)
	if err != nil {
		return err
	}

	filled, failed := 0, 0
	now := time.Now().UTC()

	for i, f := range u.Data {
		for version := 1; version <= field.MaxVersions; version++ {
			source := f.ValueAt(u.BaseLanguage, version)
			if source == "" {
				continue
			}
			for _, lang := range field.SupportedLanguages {
				if lang == u.BaseLanguage || f.ValueAt(lang, version) != "" {
					continue
				}
				translated, err := translator.Translate(ctx, source, lang, u.BaseLanguage)
				if err != nil {
					log.Printf("translate %s v%d -> %s: %v", f.ID, version, lang, err)
					failed++
					continue
				}
				f = field.SetValue(f, lang, version, translated, now)
				filled++
			}
		}
		u.Data[i] = f
	}

	if filled > 0 {
		u.UpdatedAt = now
		if err := db.SaveUserContext(ctx, u); err != nil {
			return err
		}
	}

	log.Printf("Backfilled %d translations for user %s (%d failures)", filled, userID, failed)
	return nil
}
