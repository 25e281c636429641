package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
	"github.com/istore/storefront/storefront"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Addr    string
	ActorID string
	Role    string
}

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Code        string   `yaml:"code"`
	Price       string   `yaml:"price"`
	Stock       int      `yaml:"stock"`
	Status      *bool    `yaml:"status"`
	Owner       string   `yaml:"owner"`
	Thumbnails  []string `yaml:"thumbnails"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <products.yaml>",
		Short: "Load products into a running server",
		Long: `Create every product listed in a YAML file through the CreateProduct
RPC of a running server.

Example:
  storefront seed --addr localhost:50400 products.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "localhost:50400", "storefront server address")
	cmd.Flags().StringVar(&opts.ActorID, "actor", "admin", "actor ID recorded as creator")
	cmd.Flags().StringVar(&opts.Role, "role", domain.RoleAdmin, "actor role (admin|premium)")

	return cmd
}

func runSeed(ctx context.Context, opts *SeedOptions, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	products, err := LoadSeed(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	client, err := storefront.NewClient(opts.Addr)
	if err != nil {
		return err
	}
	defer client.Close()

	actor := domain.Actor{ID: opts.ActorID, Role: opts.Role}
	created, skipped := 0, 0
	for _, p := range products {
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := client.CreateProduct(callCtx, &storefront.CreateProductRequest{Actor: actor, Product: p})
		cancel()
		switch {
		case err == nil:
			created++
		case common.StatusReason(err) == common.ReasonDuplicateCode:
			skipped++
			fmt.Fprintf(out, "skip %s: code already exists\n", p.Code)
		default:
			return fmt.Errorf("create %s: %w", p.Code, err)
		}
	}
	fmt.Fprintf(out, "created %d products, skipped %d\n", created, skipped)
	return nil
}

// LoadSeed parses a product seed file. Products are active unless status is
// set to false.
func LoadSeed(r io.Reader) ([]domain.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file seedFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for i, sp := range file.Products {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): invalid price %q", i, sp.Code, sp.Price)
		}
		active := true
		if sp.Status != nil {
			active = *sp.Status
		}
		products = append(products, domain.Product{
			ID:          sp.ID,
			Title:       sp.Title,
			Description: sp.Description,
			Category:    sp.Category,
			Code:        sp.Code,
			Price:       price,
			Stock:       sp.Stock,
			Status:      active,
			Owner:       sp.Owner,
			Thumbnails:  sp.Thumbnails,
		})
	}
	return products, nil
}
