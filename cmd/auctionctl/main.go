package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go_auction/internal/auction"
	"go_auction/internal/config"
	"go_auction/internal/db"
	"go_auction/internal/images"
	"go_auction/internal/member"
	"go_auction/internal/rowmap"
	"go_auction/internal/schema"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const usage = `usage: auctionctl <command> [flags]

commands:
  create-auction   create an item and its auction
  delete-auction   delete an auction and its bids
  place-bid        place a bid on an auction
  grant-admin      grant the admin flag to a member
  revoke-admin     revoke the admin flag from a member
  confirm-member   confirm a pending member
  list-members     list all members
  add-image        register a local image file for an item
  inspect-schema   print the live column set of a table
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	rowmap.SetCurrencySymbol(cfg.Currency)

	if err := db.InitMySQL(cfg.DB.DSN); err != nil {
		log.Fatalf("failed to initialize MySQL: %v", err)
	}
	defer db.Close()

	logrus.SetLevel(logrus.WarnLevel)
	logger := logrus.NewEntry(logrus.StandardLogger())
	pool := db.SQL()
	imageSvc := images.NewService(pool, cfg.Uploads, logger)
	auctionSvc := auction.NewService(pool, imageSvc, logger)
	memberSvc := member.NewService(pool, logger)

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "create-auction":
		createAuction(ctx, auctionSvc, args)
	case "delete-auction":
		deleteAuction(ctx, auctionSvc, args)
	case "place-bid":
		placeBid(ctx, auctionSvc, args)
	case "grant-admin":
		setAdmin(ctx, memberSvc, args, true)
	case "revoke-admin":
		setAdmin(ctx, memberSvc, args, false)
	case "confirm-member":
		confirmMember(ctx, memberSvc, args)
	case "list-members":
		listMembers(ctx, memberSvc)
	case "add-image":
		addImage(ctx, imageSvc, cfg.Uploads, args)
	case "inspect-schema":
		inspectSchema(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func createAuction(ctx context.Context, svc *auction.Service, args []string) {
	fs := flag.NewFlagSet("create-auction", flag.ExitOnError)
	title := fs.String("title", "", "item title (required)")
	desc := fs.String("desc", "", "item description")
	seller := fs.Int("seller", 0, "seller member id")
	price := fs.Float64("price", 0, "starting price")
	end := fs.String("end", "", "end date, RFC3339")
	cat := fs.String("category", "", "category")
	subcat := fs.String("subcategory", "", "sub-category")
	fs.Parse(args)

	if *title == "" {
		log.Fatal("-title is required")
	}

	in := auction.CreateInput{
		Title:         *title,
		Description:   *desc,
		StartingPrice: *price,
		Category:      *cat,
		SubCategory:   *subcat,
	}
	if *seller > 0 {
		in.SellerID = seller
	}
	if *end != "" {
		t, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			log.Fatalf("invalid -end: %v", err)
		}
		in.EndDate = &t
	}

	created, err := svc.CreateItemAndAuction(ctx, in)
	if err != nil {
		log.Fatalf("create failed: %v", err)
	}
	if created == nil {
		log.Fatal("create failed: could not resolve new ids")
	}
	fmt.Printf("auction %d created (item %d)\n", created.AuctionID, created.ItemID)
}

func deleteAuction(ctx context.Context, svc *auction.Service, args []string) {
	fs := flag.NewFlagSet("delete-auction", flag.ExitOnError)
	id := fs.Int("id", 0, "auction id (required)")
	fs.Parse(args)
	if *id <= 0 {
		log.Fatal("-id is required")
	}

	auctions, bids, err := svc.DeleteAuctionAndBids(ctx, *id)
	if err != nil {
		log.Fatalf("delete failed: %v", err)
	}
	if auctions == 0 {
		log.Fatalf("auction %d not found (nothing deleted)", *id)
	}
	fmt.Printf("deleted %d auction row(s) and %d bid(s)\n", auctions, bids)
}

func placeBid(ctx context.Context, svc *auction.Service, args []string) {
	fs := flag.NewFlagSet("place-bid", flag.ExitOnError)
	id := fs.Int("id", 0, "auction id (required)")
	bidder := fs.Int("bidder", 0, "bidder member id (required)")
	amount := fs.Float64("amount", 0, "bid amount (required)")
	fs.Parse(args)
	if *id <= 0 || *bidder <= 0 || *amount <= 0 {
		log.Fatal("-id, -bidder and -amount are required")
	}

	accepted, err := svc.PlaceBid(ctx, *id, *bidder, *amount)
	if err != nil {
		log.Fatalf("bid failed: %v", err)
	}
	if !accepted {
		log.Fatal("bid rejected")
	}
	fmt.Println("bid accepted")
}

func setAdmin(ctx context.Context, svc *member.Service, args []string, admin bool) {
	fs := flag.NewFlagSet("set-admin", flag.ExitOnError)
	id := fs.Int("id", 0, "member id (required)")
	fs.Parse(args)
	if *id <= 0 {
		log.Fatal("-id is required")
	}

	ok, err := svc.SetAdmin(ctx, *id, admin)
	if err != nil {
		log.Fatalf("update failed: %v", err)
	}
	if !ok {
		log.Fatalf("member %d not found", *id)
	}
	fmt.Printf("member %d admin=%v\n", *id, admin)
}

func confirmMember(ctx context.Context, svc *member.Service, args []string) {
	fs := flag.NewFlagSet("confirm-member", flag.ExitOnError)
	id := fs.Int("id", 0, "member id (required)")
	fs.Parse(args)
	if *id <= 0 {
		log.Fatal("-id is required")
	}

	ok, err := svc.Confirm(ctx, *id)
	if err != nil {
		log.Fatalf("confirm failed: %v", err)
	}
	if !ok {
		log.Fatalf("member %d not found or schema has no status column", *id)
	}
	fmt.Printf("member %d confirmed\n", *id)
}

func listMembers(ctx context.Context, svc *member.Service) {
	all, err := svc.GetAll(ctx)
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	for _, m := range all {
		admin := ""
		if m.IsAdmin {
			admin = " [admin]"
		}
		fmt.Printf("%6d  %-20s %-30s %s%s\n", m.ID, m.Username, m.Email, m.Status, admin)
	}
	fmt.Printf("%d member(s)\n", len(all))
}

func addImage(ctx context.Context, svc *images.Service, uploadsDir string, args []string) {
	fs := flag.NewFlagSet("add-image", flag.ExitOnError)
	itemID := fs.Int("item", 0, "item id (required)")
	file := fs.String("file", "", "local image file (required)")
	order := fs.Int("order", 0, "sort order")
	fs.Parse(args)
	if *itemID <= 0 || *file == "" {
		log.Fatal("-item and -file are required")
	}

	ext := strings.ToLower(filepath.Ext(*file))
	name := uuid.New().String() + ext
	if err := copyFile(*file, filepath.Join(uploadsDir, name)); err != nil {
		log.Fatalf("copy failed: %v", err)
	}
	url := "/static/uploads/" + name

	imgID, err := svc.Add(ctx, *itemID, url, nil, *order)
	if err != nil {
		log.Fatalf("insert failed: %v", err)
	}
	if imgID == 0 {
		log.Fatal("insert failed: no gallery table shape matched")
	}
	if *order == 1 {
		if _, err := svc.SetItemImage(ctx, *itemID, url); err != nil {
			log.Fatalf("mirror failed: %v", err)
		}
	}
	fmt.Printf("image %d added as %s\n", imgID, url)
}

func inspectSchema(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("inspect-schema", flag.ExitOnError)
	table := fs.String("table", "", "table name (required)")
	fs.Parse(args)
	if *table == "" {
		log.Fatal("-table is required")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		log.Fatalf("connection failed: %v", err)
	}
	defer conn.Close()

	cols, err := schema.Columns(ctx, conn, *table)
	if err != nil {
		log.Fatalf("probe failed: %v", err)
	}
	if len(cols) == 0 {
		fmt.Printf("table %s not found in current database\n", *table)
		return
	}
	for name, dtype := range cols {
		fmt.Printf("%-30s %s\n", name, dtype)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
