// Copyright 2018 Zanicar. All rights reserved.
// Utilizes a BSD-3 license. Refer to the included LICENSE file for details.

package main

import (
	"crypto/rand"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	stegano "github.com/zanicar/bpcs-stegano"
	"github.com/zanicar/bpcs-stegano/bpcs"
	"github.com/zanicar/bpcs-stegano/internal/imageio"
)

func usage() {
	fmt.Printf("stegano: correct usage examples:\n")
	fmt.Printf("\t> stegano --hide -c cover.png (-m msg.bin | --random 512) -o stego.png [-t 0.3] [--rmax 8] [--gmax 8] [--bmax 8] [--amax 8]\n")
	fmt.Printf("\t> stegano --extract -s stego.png -o msg.bin\n")
	fmt.Printf("\t> stegano --measure -c cover.png -t 0.3 [--rmax 8] [--gmax 8] [--bmax 8] [--amax 8]\n")
	fmt.Printf("\t> stegano --help\n")
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// rawArgs is the result of a first parsing pass over argv: every flag and
// valued option actually present, with duplicates and unrecognized tokens
// rejected up front, before any mode-specific interpretation happens.
type rawArgs struct {
	flags  map[string]bool
	values map[string]string
}

// flagNames are options that take no value. valueNames are options that
// consume the following argv token as their value.
var flagNames = map[string]bool{
	"--hide": true, "--extract": true, "--measure": true, "--help": true, "-v": true,
}

var valueNames = map[string]bool{
	"-c": true, "-m": true, "-s": true, "-o": true, "-t": true,
	"--rmax": true, "--gmax": true, "--bmax": true, "--amax": true, "--random": true,
}

// collectRawArgs walks argv, classifying each token as a flag or a valued
// option per flagNames/valueNames, and rejects duplicate options and
// options not recognized at all. It does not know anything about which
// mode is selected or which options that mode requires; parseArgs handles
// that once the raw shape is known to be well-formed.
func collectRawArgs(argv []string) (*rawArgs, error) {
	raw := &rawArgs{flags: map[string]bool{}, values: map[string]string{}}

	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		if raw.flags[tok] || raw.values[tok] != "" {
			return nil, fail("duplicate argument %s", tok)
		}

		switch {
		case flagNames[tok]:
			raw.flags[tok] = true
		case valueNames[tok]:
			i++
			if i >= len(argv) {
				return nil, fail("missing value for %s", tok)
			}
			raw.values[tok] = argv[i]
		default:
			return nil, fail("unrecognized argument %s", tok)
		}
	}
	return raw, nil
}

// present reports whether name was passed, whether as a flag or a valued
// option.
func (r *rawArgs) present(name string) bool {
	return r.flags[name] || r.values[name] != ""
}

// intInRange returns the integer value of name, or deflt if name was not
// passed, erroring if the value doesn't parse or falls outside [lo,hi].
func (r *rawArgs) intInRange(name string, deflt, lo, hi int) (int, error) {
	raw, ok := r.values[name]
	if !ok {
		return deflt, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fail("%s should be an integer in range [%d,%d]", name, lo, hi)
	}
	return v, nil
}

// floatInRange returns the float64 value of name, or deflt if name was not
// passed, erroring if the value doesn't parse or falls outside [lo,hi].
func (r *rawArgs) floatInRange(name string, deflt, lo, hi float64) (float64, bool, error) {
	raw, ok := r.values[name]
	if !ok {
		return deflt, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < lo || v > hi {
		return 0, false, fail("%s should be a real number in range [%v,%v]", name, lo, hi)
	}
	return v, true, nil
}

// cliArgs is the fully parsed, mode-validated command line.
type cliArgs struct {
	help, verbose          bool
	hide, extract, measure bool
	cover, msg, stego, out string
	usingRandom            bool
	randomCount            int
	threshold              float64
	hasThreshold           bool
	rmax, gmax, bmax, amax int
}

// parseArgs collects the raw argument shape and then checks it against the
// required and allowed options for whichever single mode was selected,
// mirroring the two-pass structure (collect, then validate per mode) that
// a handwritten argument parser for this CLI surface follows.
func parseArgs(argv []string) (*cliArgs, error) {
	raw, err := collectRawArgs(argv)
	if err != nil {
		return nil, err
	}

	args := &cliArgs{}
	if raw.present("--help") {
		args.help = true
		return args, nil
	}
	args.verbose = raw.present("-v")

	args.hide = raw.present("--hide")
	args.extract = raw.present("--extract")
	args.measure = raw.present("--measure")
	modeCount := 0
	for _, b := range []bool{args.hide, args.extract, args.measure} {
		if b {
			modeCount++
		}
	}
	if modeCount == 0 {
		return nil, fail("no mode selected (--hide, --extract or --measure)")
	}
	if modeCount > 1 {
		return nil, fail("multiple modes selected (choose one of --hide, --extract or --measure)")
	}

	args.usingRandom = raw.present("--random")
	if args.hide && raw.present("-m") && args.usingRandom {
		return nil, fail("-m and --random are mutually exclusive")
	}

	required := map[string]bool{}
	allowed := map[string]bool{}
	switch {
	case args.hide:
		required["-c"], required["-o"] = true, true
		if args.usingRandom {
			required["--random"] = true
		} else {
			required["-m"] = true
		}
		for _, a := range []string{"-t", "--rmax", "--gmax", "--bmax", "--amax", "-m", "--random", "-c", "-o"} {
			allowed[a] = true
		}
	case args.extract:
		required["-s"], required["-o"] = true, true
		allowed["-s"], allowed["-o"] = true, true
	case args.measure:
		required["-c"], required["-t"] = true, true
		for _, a := range []string{"-c", "-t", "--rmax", "--gmax", "--bmax", "--amax"} {
			allowed[a] = true
		}
	}
	allowed["-v"] = true

	for name := range required {
		if !raw.present(name) {
			return nil, fail("missing argument %s", name)
		}
	}
	for name := range raw.values {
		if !allowed[name] {
			return nil, fail("unexpected argument %s", name)
		}
	}
	for name := range raw.flags {
		if name == "-v" || name == "--hide" || name == "--extract" || name == "--measure" {
			continue
		}
		if !allowed[name] {
			return nil, fail("unexpected argument %s", name)
		}
	}

	args.cover = raw.values["-c"]
	args.msg = raw.values["-m"]
	args.stego = raw.values["-s"]
	args.out = raw.values["-o"]

	if args.usingRandom {
		n, err := raw.intInRange("--random", 0, 0, 2000000000)
		if err != nil {
			return nil, err
		}
		args.randomCount = n
	}

	threshold, has, err := raw.floatInRange("-t", 0.0, 0.0, 0.5)
	if err != nil {
		return nil, err
	}
	args.threshold, args.hasThreshold = threshold, has

	if args.rmax, err = raw.intInRange("--rmax", 8, 0, 8); err != nil {
		return nil, err
	}
	if args.gmax, err = raw.intInRange("--gmax", 8, 0, 8); err != nil {
		return nil, err
	}
	if args.bmax, err = raw.intInRange("--bmax", 8, 0, 8); err != nil {
		return nil, err
	}
	if args.amax, err = raw.intInRange("--amax", 8, 0, 8); err != nil {
		return nil, err
	}

	return args, nil
}

// capsFromFlags builds the Caps the engine should use and validates each
// value is within [0,8], per spec.md's InvalidArgument rule for
// out-of-range caps.
func capsFromFlags(rmax, gmax, bmax, amax int) (stegano.Caps, error) {
	caps := stegano.Caps{R: rmax, G: gmax, B: bmax, A: amax}
	if !caps.Valid() {
		return caps, fail("bit-plane caps must each be in [0,8] and select at least one plane (got r=%d g=%d b=%d a=%d)", rmax, gmax, bmax, amax)
	}
	return caps, nil
}

// readAll reads path's full contents, treating "-" as stdin.
func readAll(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeAll writes data to path, treating "-" as stdout.
func writeAll(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// randomPayload fills n bytes of pseudo-random data for the --random
// convenience mode, seeded from a real entropy source since the fill
// content, unlike the chunk permutation, carries no wire-format
// determinism requirement.
func randomPayload(n int) ([]byte, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fail("seed random fill: %w", err)
	}
	src := mrand.NewChaCha8(seed)
	data := make([]byte, n)
	src.Read(data)
	return data, nil
}

func runHide(a *cliArgs, caps stegano.Caps) error {
	cover, err := imageio.LoadFile(a.cover)
	if err != nil {
		return fail("load cover: %w", err)
	}

	var payload []byte
	if a.usingRandom {
		payload, err = randomPayload(a.randomCount)
		if err != nil {
			return err
		}
	} else {
		payload, err = readAll(a.msg)
		if err != nil {
			return fail("read message: %w", err)
		}
	}

	ext := imageio.ExtOf(a.out)
	if a.out != "-" && !imageio.SupportedOutputExtensions[ext] {
		return fail("output extension %q must be one of bmp, png, tga", ext)
	}

	engine := bpcs.Engine{}
	stats, err := engine.Hide(cover, payload, caps)
	if err != nil {
		return err
	}

	log.Info().
		Float64("threshold", stats.Threshold).
		Int("chunks_used", stats.ChunksUsed).
		Int("message_size", stats.MessageSize).
		Int("message_bytes_hidden", stats.MessageBytesHidden).
		Msg("hide complete")
	printStats(stats)

	if a.hasThreshold && stats.Threshold > a.threshold {
		log.Warn().Msg("requested threshold is more permissive than the calculated maximum; calculated threshold was used")
	}

	if a.out == "-" {
		return imageio.Encode(os.Stdout, cover, "png")
	}
	return imageio.SaveFile(a.out, cover)
}

func runExtract(a *cliArgs) error {
	stego, err := imageio.LoadFile(a.stego)
	if err != nil {
		return fail("load stego image: %w", err)
	}

	engine := bpcs.Engine{}
	payload, err := engine.Extract(stego)
	if err != nil {
		return err
	}

	log.Info().Int("bytes", len(payload)).Msg("extract complete")
	return writeAll(a.out, payload)
}

func runMeasure(a *cliArgs, caps stegano.Caps) error {
	cover, err := imageio.LoadFile(a.cover)
	if err != nil {
		return fail("load cover: %w", err)
	}

	engine := bpcs.Engine{}
	stats, err := engine.Measure(cover, a.threshold, caps)
	if err != nil {
		return err
	}

	fmt.Printf("capacity: %d bytes at threshold %.4f (%d chunks available)\n",
		stats.CapacityBytes, stats.Threshold, stats.ChunksAvailable)
	printBitPlaneTable(stats.ChunksPerBitPlane)
	return nil
}

// printStats renders the hide statistics: a summary line, an overflow
// warning when applicable, and the per-channel, per-bit-plane table of
// chunk counts. The table shows raw counts only; no percentages are printed.
func printStats(stats stegano.HideStats) {
	fmt.Printf("threshold=%.4f chunks_used=%d message_size=%d message_bytes_hidden=%d\n",
		stats.Threshold, stats.ChunksUsed, stats.MessageSize, stats.MessageBytesHidden)
	if stats.Overflowed() {
		fmt.Printf("warning: cover capacity exhausted; only %d of %d message bytes were hidden\n",
			stats.MessageBytesHidden, stats.MessageSize)
	}
	printBitPlaneTable(stats.ChunksUsedPerBitPlane)
}

var channelNames = [4]string{"R", "G", "B", "A"}

// printBitPlaneTable prints a channel x bit-plane grid of chunk counts,
// MSB to LSB, matching the table the reference CLI prints after --hide
// and --measure.
func printBitPlaneTable(counts map[int]int) {
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("%-8s", "plane")
	for _, name := range channelNames {
		fmt.Printf("%8s", name)
	}
	fmt.Println()
	for bit := 0; bit < 8; bit++ {
		fmt.Printf("%-8s", fmt.Sprintf("bit%d", 7-bit))
		for c := 0; c < 4; c++ {
			plane := 8*c + bit
			fmt.Printf("%8d", counts[plane])
		}
		fmt.Println()
	}
	if total > 0 {
		fmt.Printf("total chunks used: %d\n", total)
	}
}

func die(err error) {
	usage()
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
	os.Exit(1)
}

func main() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		die(err)
	}

	if args.help {
		usage()
		return
	}

	if args.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	caps, err := capsFromFlags(args.rmax, args.gmax, args.bmax, args.amax)
	if err != nil {
		die(err)
	}

	switch {
	case args.hide:
		if err := runHide(args, caps); err != nil {
			die(err)
		}
	case args.extract:
		if err := runExtract(args); err != nil {
			die(err)
		}
	case args.measure:
		if err := runMeasure(args, caps); err != nil {
			die(err)
		}
	}
}
