package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"kbridge/pkg/kbridge"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kbridge-cli [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version                        Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  order <accno> <code> <qty>     Submit an order (positive qty buys, negative sells)\n")
		fmt.Fprintf(os.Stderr, "  balance <accno>                Show cash and holdings\n")
		fmt.Fprintf(os.Stderr, "  price <code>                   Fetch the current quote\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}

	server := flag.String("server", "http://localhost:5432", "bridge server base URL")
	price := flag.Int64("price", 0, "limit price in minor units (omit for a market order)")
	premarket := flag.Bool("premarket", false, "use pre-market pricing for market orders")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := kbridge.NewClient(*server)

	switch args[0] {
	case "version":
		fmt.Printf("kbridge-cli %s\n", version)

	case "order":
		if len(args) != 4 {
			fatal("order requires <accno> <code> <qty>")
		}
		var qty int64
		if _, err := fmt.Sscanf(args[3], "%d", &qty); err != nil {
			fatal("invalid quantity %q", args[3])
		}

		var res *kbridge.OrderResult
		var err error
		if *price > 0 {
			res, err = client.LimitOrder(ctx, args[1], args[2], qty, *price)
		} else {
			res, err = client.MarketOrder(ctx, args[1], args[2], qty, *premarket)
		}
		if err != nil {
			fatal("order failed: %v", err)
		}
		if res == nil {
			fmt.Println("qty 0: nothing to do")
			return
		}
		fmt.Printf("%s %s %d %s  order_no=%s status=%s avg_price=%d\n",
			res.Side, res.Code, res.Qty, res.CorrelationID, res.OrderNo, res.Status, res.AvgPrice)

	case "balance":
		if len(args) != 2 {
			fatal("balance requires <accno>")
		}
		bal, err := client.Balance(ctx, args[1])
		if err != nil {
			fatal("balance failed: %v", err)
		}
		fmt.Printf("cash\t%d\n", bal["cash"])
		codes := make([]string, 0, len(bal))
		for code := range bal {
			if code != "cash" {
				codes = append(codes, code)
			}
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Printf("%s\t%d\n", code, bal[code])
		}

	case "price":
		if len(args) != 2 {
			fatal("price requires <code>")
		}
		p, err := client.Price(ctx, args[1])
		if err != nil {
			fatal("price failed: %v", err)
		}
		fmt.Printf("%s\t%d\t%d\n", p.Name, p.Price, p.Volume)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
