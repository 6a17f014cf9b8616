package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/platform/auth"
)

const usage = `usage: ledgerctl <command> [flags]

commands:
  token    -identity ID             mint a bearer token (needs LEDGER_JWT_SIGNING_KEY)
  seed     -f roles.yaml            assign roles as the owner
  get      -product ID              show a product
  history  -product ID              show a product's status history
  audit    [-from N] [-limit N]     list audit entries`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "token":
		err = tokenCmd(args)
	case "seed":
		err = seedCmd(args)
	case "get":
		err = getCmd(args)
	case "history":
		err = historyCmd(args)
	case "audit":
		err = auditCmd(args)
	default:
		log.Fatal(usage)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func tokenCmd(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	identity := fs.String("identity", "", "Identity to issue the token for (required)")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime")
	issuer := fs.String("issuer", getEnvOrDefault("LEDGER_JWT_ISSUER", "provenance-ledger"), "Token issuer")
	_ = fs.Parse(args)

	tokens, err := auth.NewTokenService(os.Getenv("LEDGER_JWT_SIGNING_KEY"), *issuer)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(domain.Identity(*identity), *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func seedCmd(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("f", "roles.yaml", "Role seed file")
	addr := addrFlag(fs)
	_ = fs.Parse(args)

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	seed, err := parseSeed(f)
	if err != nil {
		return err
	}

	return withClient(*addr, func(ctx context.Context, client pb.LedgerServiceClient) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+seed.Token)
		for _, a := range seed.Roles {
			resp, err := client.AssignRole(ctx, &pb.AssignRoleRequest{Identity: a.Identity, Role: a.Role})
			if err != nil {
				if code, ok := pb.LedgerCode(err); ok && code == int(domain.CodeRoleExists) {
					log.Printf("%s already holds %s", a.Identity, a.Role)
					continue
				}
				return fmt.Errorf("assign %s to %s: %w", a.Role, a.Identity, err)
			}
			log.Printf("Assigned %s to %s (tx %d)", a.Role, a.Identity, resp.TxID)
		}
		return nil
	})
}

func getCmd(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	productID := fs.String("product", "", "Product id (required)")
	addr := addrFlag(fs)
	_ = fs.Parse(args)

	return withClient(*addr, func(ctx context.Context, client pb.LedgerServiceClient) error {
		resp, err := client.GetProduct(ctx, &pb.GetProductRequest{ProductID: *productID})
		if err != nil {
			return err
		}
		return printJSON(resp.Product)
	})
}

func historyCmd(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	productID := fs.String("product", "", "Product id (required)")
	addr := addrFlag(fs)
	_ = fs.Parse(args)

	return withClient(*addr, func(ctx context.Context, client pb.LedgerServiceClient) error {
		resp, err := client.ListStatusHistory(ctx, &pb.ListStatusHistoryRequest{ProductID: *productID})
		if err != nil {
			return err
		}
		for _, e := range resp.Entries {
			fmt.Printf("%d. %-12s %s  by %s at %q (%s)\n",
				e.Sequence, e.Status, e.Timestamp.Format(time.RFC3339), e.ChangedBy, e.Location, e.Reason)
		}
		return nil
	})
}

func auditCmd(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	from := fs.Uint64("from", 0, "First transaction id")
	limit := fs.Int("limit", 20, "Max entries")
	addr := addrFlag(fs)
	_ = fs.Parse(args)

	return withClient(*addr, func(ctx context.Context, client pb.LedgerServiceClient) error {
		resp, err := client.ListAuditEntries(ctx, &pb.ListAuditEntriesRequest{From: *from, Limit: *limit})
		if err != nil {
			return err
		}
		fmt.Printf("Showing %d of %d entries:\n", len(resp.Entries), resp.Total)
		for _, e := range resp.Entries {
			fmt.Printf("%6d  %-11s %-20s %-36s %s\n", e.TxID, e.Action, e.Actor, e.ProductID, e.Details)
		}
		return nil
	})
}

func addrFlag(fs *flag.FlagSet) *string {
	return fs.String("addr", getEnvOrDefault("LEDGER_ADDR", "localhost:9090"), "Ledger gRPC address")
}

func withClient(addr string, fn func(ctx context.Context, client pb.LedgerServiceClient) error) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, pb.NewLedgerServiceClient(conn))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
