// Command ordertool is an operator utility for the orders database: it can
// seed a fresh database with sample orders, import a JSON export, or write
// one without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sumifun/order-intake-api/internal/database"
	"github.com/sumifun/order-intake-api/internal/models"
	"github.com/sumifun/order-intake-api/internal/repository"
	"github.com/sumifun/order-intake-api/internal/service"
	"github.com/sumifun/order-intake-api/pkg/logger"
)

const usage = `usage: ordertool [-db FILE] <command>

commands:
  seed             insert sample orders (skips existing order IDs)
  import FILE      import orders from a JSON export (skips existing order IDs)
  export [FILE]    export all orders to a JSON file (default orders_export.json)
`

// sampleOrders seed a fresh database so the admin viewer has something to show.
var sampleOrders = []*models.Order{
	{
		OrderID:  "SUMIFUN-20230101120000-123",
		Name:     "Jane Smith",
		Phone:    "+1 (555) 456-7890",
		Quantity: 1,
		Price:    models.UnitPrice,
		Date:     "2023-01-01 12:00:00",
		Status:   "completed",
	},
	{
		OrderID:  "SUMIFUN-20230102130000-456",
		Name:     "John Doe",
		Phone:    "+1 (555) 654-3210",
		Quantity: 3,
		Price:    models.BundlePrice,
		Date:     "2023-01-02 13:00:00",
		Status:   "completed",
	},
}

func main() {
	dbPath := flag.String("db", "orders.db", "path to the orders database file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	l := logger.NewLogger("warn")
	db, err := database.New(*dbPath, l)

	if err != nil {
		fmt.Fprintf(os.Stderr, "ordertool: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewOrderRepository(db, l)
	orders := service.NewOrderService(repo, nil, l)
	ctx := context.Background()

	switch flag.Arg(0) {
	case "seed":
		err = seed(ctx, repo)
	case "import":
		if flag.NArg() < 2 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		err = runImport(ctx, orders, flag.Arg(1))
	case "export":
		path := "orders_export.json"
		if flag.NArg() > 1 {
			path = flag.Arg(1)
		}
		err = runExport(ctx, orders, path)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ordertool: %v\n", err)
		os.Exit(1)
	}

	total, err := repo.Count(ctx)

	if err == nil {
		fmt.Printf("Total orders in database: %d\n", total)
	}
}

func seed(ctx context.Context, repo *repository.OrderRepository) error {
	inserted := 0

	for _, order := range sampleOrders {
		ok, err := repo.InsertIfAbsent(ctx, order)

		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}

	fmt.Printf("Seeded %d sample orders\n", inserted)
	return nil
}

func runImport(ctx context.Context, orders *service.OrderService, path string) error {
	result, err := orders.ImportFromFile(ctx, path, service.ImportSkip)

	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d orders from %s\n", result.Inserted, result.Attempted, path)
	return nil
}

func runExport(ctx context.Context, orders *service.OrderService, path string) error {
	count, err := orders.ExportToFile(ctx, path)

	if err != nil {
		return err
	}

	fmt.Printf("Exported %d orders to %s\n", count, path)
	return nil
}
