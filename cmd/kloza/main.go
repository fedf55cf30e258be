package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"kloza/internal/app"
	"kloza/internal/config"
	"kloza/internal/domain"
	"kloza/internal/engine"
	"kloza/internal/server"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "kloza",
	Short: "Kloza CLI",
	Long: `Kloza turns ideas into collaborations.
- Idea: a proposal with a title, a description and an author; starts as draft and must be approved before work begins.
- Kollab: a collaboration on an approved idea with a goal, participants and success criteria. An idea has at most one active kollab at a time.
- Discussion: a message posted on a kollab.
Run 'kloza serve' for the REST API, or use the idea/kollab/discussion commands against the same store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func addPersistentFlags() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("workspace", "w", ".", "workspace directory holding kloza.yml")
	pf.String("config", "", "config file (default <workspace>/kloza.yml)")
	pf.Bool("json", false, "output JSON")
	pf.String("driver", "", "store driver: sqlite, mongo or postgres")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	_ = v.BindPFlag("workspace", pf.Lookup("workspace"))
	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("json", pf.Lookup("json"))
	_ = v.BindPFlag("store.driver", pf.Lookup("driver"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(ideaCmd())
	rootCmd.AddCommand(kollabCmd())
	rootCmd.AddCommand(discussionCmd())
	rootCmd.AddCommand(tokenCmd())
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				handler, err := a.Handler()
				if err != nil {
					return err
				}
				sc := a.Config.Server
				srv := &http.Server{Addr: sc.Addr, Handler: handler, ReadHeaderTimeout: sc.ReadHeaderTimeout}
				ln, err := net.Listen("tcp", sc.Addr)
				if err != nil {
					return err
				}
				a.Logger.Info("serving kloza api",
					zap.String("addr", ln.Addr().String()),
					zap.String("base_path", sc.BasePath),
					zap.String("mode", sc.Mode),
					zap.String("docs", "/docs"),
				)
				if err := runServer(ctx, srv, ln, shutdownTimeout); err != nil {
					return err
				}
				a.Logger.Info("server stopped")
				return nil
			})
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config, :3000)")
	cmd.Flags().String("base-path", "", "API base path (default from config, /api)")
	cmd.Flags().String("mode", "", "development or production")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("server.base_path", cmd.Flags().Lookup("base-path"))
	_ = v.BindPFlag("server.mode", cmd.Flags().Lookup("mode"))
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				fmt.Printf("schema up to date (%s)\n", a.Config.Store.Driver)
				return nil
			})
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage kloza.yml"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default kloza.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := v.GetString("workspace")
			if err := os.MkdirAll(workspace, 0o755); err != nil {
				return err
			}
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret != "" {
				cfg.Auth.JWTSecret = "********"
			}
			if v.GetBool("json") {
				return printJSON(cfg)
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

func ideaCmd() *cobra.Command {
	idea := &cobra.Command{Use: "idea", Short: "Manage ideas"}
	idea.AddCommand(ideaCreateCmd())
	idea.AddCommand(ideaListCmd())
	idea.AddCommand(ideaShowCmd())
	return idea
}

func ideaCreateCmd() *cobra.Command {
	var title, description, createdBy, status string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusFlag(cmd.Flags().Changed("status"), status, domain.ParseIdeaStatus)
			if err != nil {
				return err
			}
			dto := domain.CreateIdeaDTO{Title: title, Description: description, CreatedBy: createdBy, Status: st}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				idea, err := e.CreateIdea(ctx, dto)
				if err != nil {
					return err
				}
				return printIdeas(idea)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "idea title")
	cmd.Flags().StringVar(&description, "description", "", "idea description")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "author")
	cmd.Flags().StringVar(&status, "status", "", "draft, approved or archived (default draft)")
	return cmd
}

func ideaListCmd() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ideas, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				res, err := e.ListIdeas(ctx, page, limit)
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(res)
				}
				if err := printIdeas(res.Items...); err != nil {
					return err
				}
				p := res.Pagination
				fmt.Printf("page %d of %d (%d total)\n", p.Page, p.TotalPages, p.Total)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", engine.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", engine.DefaultLimit, "items per page (1-100)")
	return cmd
}

func ideaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				idea, err := e.GetIdea(ctx, args[0])
				if err != nil {
					return err
				}
				return printIdeas(idea)
			})
		},
	}
}

func kollabCmd() *cobra.Command {
	k := &cobra.Command{Use: "kollab", Short: "Manage kollabs"}
	k.AddCommand(kollabCreateCmd())
	k.AddCommand(kollabShowCmd())
	return k
}

func kollabCreateCmd() *cobra.Command {
	var ideaID, goal, criteria, status string
	var participants []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a kollab on an approved idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusFlag(cmd.Flags().Changed("status"), status, domain.ParseKollabStatus)
			if err != nil {
				return err
			}
			dto := domain.CreateKollabDTO{
				IdeaID:          ideaID,
				Goal:            goal,
				Participants:    participants,
				SuccessCriteria: criteria,
				Status:          st,
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				k, err := e.CreateKollab(ctx, dto)
				if err != nil {
					return err
				}
				return printKollab(k)
			})
		},
	}
	cmd.Flags().StringVar(&ideaID, "idea-id", "", "approved idea id")
	cmd.Flags().StringVar(&goal, "goal", "", "kollab goal")
	cmd.Flags().StringSliceVar(&participants, "participant", nil, "participant (repeatable)")
	cmd.Flags().StringVar(&criteria, "success-criteria", "", "success criteria")
	cmd.Flags().StringVar(&status, "status", "", "active, completed or cancelled (default active)")
	return cmd
}

func kollabShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a kollab with its idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				k, err := e.GetKollab(ctx, args[0])
				if err != nil {
					return err
				}
				return printKollab(k)
			})
		},
	}
}

func discussionCmd() *cobra.Command {
	d := &cobra.Command{Use: "discussion", Short: "Manage kollab discussions"}
	d.AddCommand(discussionAddCmd())
	return d
}

func discussionAddCmd() *cobra.Command {
	var message, author string
	cmd := &cobra.Command{
		Use:   "add <kollab-id>",
		Short: "Post a message on a kollab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dto := domain.CreateDiscussionDTO{Message: message, Author: author}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				d, err := e.CreateDiscussion(ctx, args[0], dto)
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(d)
				}
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "Kollab", "Author", "Message", "Created"})
				tw.AppendRow(table.Row{d.ID, d.KollabID, d.Author, d.Message, d.CreatedAt.Format(time.RFC3339)})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "message text")
	cmd.Flags().StringVar(&author, "author", "", "message author")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not set (KLOZA_AUTH_JWT_SECRET)")
			}
			token, err := server.IssueToken(cfg.Auth.JWTSecret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(map[string]string{"token": token, "subject": subject})
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// --- helpers ---

// statusFlag checks a --status value before any store is opened. An unset
// flag yields nil so the engine applies its default status.
func statusFlag[S ~string](set bool, raw string, parse func(string) (S, error)) (any, error) {
	if !set {
		return nil, nil
	}
	st, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return string(st), nil
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := v.GetString("config"); path != "" {
		cfg, err = config.FromFile(path)
	} else {
		cfg, err = config.LoadOptional(v.GetString("workspace"))
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.Open(ctx, v.GetString("workspace"), cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Close(closeCtx)
	}()
	return fn(ctx, a)
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		return fn(ctx, a.Engine)
	})
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	return tw
}

func printIdeas(items ...domain.Idea) error {
	if v.GetBool("json") {
		if len(items) == 1 {
			return printJSON(items[0])
		}
		return printJSON(items)
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Created By", "Created"})
	for _, i := range items {
		tw.AppendRow(table.Row{i.ID, i.Title, i.Status, i.CreatedBy, i.CreatedAt.Format(time.RFC3339)})
	}
	tw.Render()
	return nil
}

func printKollab(k domain.Kollab) error {
	if v.GetBool("json") {
		return printJSON(k)
	}
	idea := ""
	if k.Idea != nil {
		idea = k.Idea.Title
	}
	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Idea", "Goal", "Participants", "Status", "Created"})
	tw.AppendRow(table.Row{
		k.ID,
		idea,
		k.Goal,
		strings.Join(k.Participants, ", "),
		k.Status,
		k.CreatedAt.Format(time.RFC3339),
	})
	tw.Render()
	return nil
}

func printJSON(x any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(x)
}
