package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/inancgumus/screen"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const version = "1.1.3"

const banner = `
 ____   ____    ___   __  __  _____  ____
|  _ \ |  _ \  / _ \  \ \/ / | ____||  _ \
| |_) || |_) || | | |  \  /  |  _|  | |_) |
|  __/ |  _ < | |_| |  /  \  | |___ |  _ <
|_|    |_| \_\ \___/  /_/\_\ |_____||_| \_\
`

// Menu colors. logrus colors its own level labels; these cover the banner
// and prompts.
const (
	colReset  = "\033[0m"
	colRed    = "\033[31m"
	colGreen  = "\033[32m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func col(c, s string) string { return c + s + colReset }

var log = logrus.New()

func main() {
	configPath := flag.String("config", defaultConfigFile, "path to the YAML config")
	listPath := flag.String("file", "", "check this proxy list and exit, skipping the menu")
	debug := flag.Bool("debug", false, "log every probe outcome")
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *listPath != "" {
		if err := checkFile(ctx, cfg, *listPath); err != nil {
			log.Fatalf("check %s: %v", *listPath, err)
		}
		return
	}

	runMenu(ctx, cfg)
}

func runMenu(ctx context.Context, cfg Config) {
	input := bufio.NewScanner(os.Stdin)
	for {
		screen.Clear()
		screen.MoveTopLeft()
		fmt.Println(col(colCyan, banner))
		fmt.Println(col(colYellow, "              PROXER V "+version))
		fmt.Println()
		fmt.Println(col(colGreen, "1") + " - Get Proxies")
		fmt.Println(col(colGreen, "2") + " - Check Proxies")
		fmt.Println(col(colGreen, "q") + " - Quit")
		fmt.Print(col(colCyan, "\n> "))

		if !input.Scan() {
			return
		}
		switch strings.TrimSpace(input.Text()) {
		case "1":
			getProxiesMenu(ctx, cfg, input)
		case "2":
			checkProxiesMenu(ctx, cfg, input)
		case "q", "Q":
			return
		default:
			fmt.Println(col(colRed, "invalid choice"))
			pause(input)
		}

		if ctx.Err() != nil {
			log.Warn("terminated by user")
			return
		}
	}
}

func getProxiesMenu(ctx context.Context, cfg Config, input *bufio.Scanner) {
	names := sourceNames()

	screen.Clear()
	screen.MoveTopLeft()
	fmt.Println(col(colYellow, "Choose a source:"))
	for i, name := range names {
		fmt.Printf("%s - %s\n", col(colGreen, strconv.Itoa(i+1)), name)
	}
	fmt.Printf("%s - all of them\n", col(colGreen, strconv.Itoa(len(names)+1)))
	fmt.Print(col(colCyan, "\n> "))

	if !input.Scan() {
		return
	}
	choice, err := strconv.Atoi(strings.TrimSpace(input.Text()))
	if err != nil || choice < 1 || choice > len(names)+1 {
		fmt.Println(col(colRed, "invalid choice"))
		pause(input)
		return
	}

	selected := cfg.Sources
	if choice <= len(names) {
		selected = []string{names[choice-1]}
	}

	endpoints, err := Scrape(ctx, selected)
	if err != nil {
		log.Errorf("scrape: %v", err)
		pause(input)
		return
	}
	if len(endpoints) == 0 {
		fmt.Println(col(colRed, "no proxies scraped"))
		pause(input)
		return
	}

	path, err := Store{Dir: cfg.OutputDir}.Save("proxies", endpoints)
	if err != nil {
		log.Errorf("save: %v", err)
		pause(input)
		return
	}

	fmt.Printf("%s proxies saved to %s\n", col(colGreen, strconv.Itoa(len(endpoints))), path)
	if ctx.Err() == nil {
		pause(input)
	}
}

func checkProxiesMenu(ctx context.Context, cfg Config, input *bufio.Scanner) {
	fmt.Print(col(colYellow, "path to the proxy list: "))
	if !input.Scan() {
		return
	}
	path := strings.TrimSpace(input.Text())
	if path == "" {
		return
	}

	if err := checkFile(ctx, cfg, path); err != nil {
		log.Errorf("check %s: %v", path, err)
	}
	if ctx.Err() == nil {
		pause(input)
	}
}

// checkFile validates every candidate in the file and saves the working
// set under the working_proxies prefix.
func checkFile(ctx context.Context, cfg Config, path string) error {
	lines, err := ReadLines(path)
	if err != nil {
		return err
	}

	endpoints, skipped := ParseEndpoints(lines)
	if skipped > 0 {
		log.Warnf("skipped %d malformed entries in %s", skipped, path)
	}
	if len(endpoints) == 0 {
		return fmt.Errorf("no valid proxies in %s", path)
	}

	bar := progressbar.NewOptions(len(endpoints),
		progressbar.OptionSetDescription("checking"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	checker := NewChecker(cfg)
	checker.OnResult = func(res ProbeResult) {
		bar.Add(1)
		if res.Working() {
			log.Infof("working proxy %s (%s)", res.Endpoint, res.Latency.Round(time.Millisecond))
		} else {
			log.Debugf("dead proxy %s: %s", res.Endpoint, res.Reason)
		}
	}

	report, err := checker.Check(ctx, lines)
	if errors.Is(err, context.Canceled) {
		log.Warnf("run cancelled, %d proxies never checked", report.Dropped)
	} else if err != nil {
		return err
	}
	bar.Finish()

	log.Infof("checked %d proxies in %s: %d working, %d dead",
		report.Candidates-report.Dropped, report.Elapsed.Round(time.Millisecond),
		len(report.Working), report.Failed)

	if len(report.Working) == 0 {
		fmt.Println(col(colRed, "no working proxies found"))
		return nil
	}

	outPath, err := Store{Dir: cfg.OutputDir}.Save("working_proxies", report.Working)
	if err != nil {
		return err
	}
	fmt.Printf("%s working proxies saved to %s\n",
		col(colGreen, strconv.Itoa(len(report.Working))), outPath)
	return nil
}

func pause(input *bufio.Scanner) {
	fmt.Print(col(colCyan, "press enter to continue"))
	input.Scan()
}
