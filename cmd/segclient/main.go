package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/danielpatrickdp/lexseg/internal/service"
)

// #region main
func main() {
	grpcAddr := envOr("LEXSEG_ADDR", "localhost:50051")

	client, err := service.Dial(grpcAddr)
	if err != nil {
		log.Fatalf("failed to connect to segmentation service at %s: %v", grpcAddr, err)
	}
	defer client.Close()

	interactive := isTerminal(os.Stdin)
	if interactive {
		fmt.Println("lexseg client ready.")
		fmt.Printf("  Server: %s\n", grpcAddr)
		fmt.Println("Type an utterance, units separated by spaces (or 'quit' to exit):")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		res, err := client.Segment(ctx, line)
		cancel()
		if err != nil {
			log.Printf("segment error: %v", err)
			continue
		}
		fmt.Println(res.SegText)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// #endregion helpers
