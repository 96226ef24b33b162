// Command uuid47 generates UUIDv7 values and converts between their
// raw form and the keyed v4 facade.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/stateless-me/uuidv47"
)

const keyEnv = "UUID47_KEY"

func main() {
	log.SetFlags(0)
	log.SetPrefix("uuid47: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "new":
		err = cmdNew(os.Args[2:])
	case "key":
		err = cmdKey(os.Args[2:])
	case "encode":
		err = cmdEncode(os.Args[2:])
	case "decode":
		err = cmdDecode(os.Args[2:])
	case "inspect":
		err = cmdInspect(os.Args[2:])
	case "bench":
		err = cmdBench(os.Args[2:])
	case "demo":
		err = cmdDemo(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: uuid47 <command> [flags] [uuid ...]

commands:
  new       generate fresh v7 values (-n count, -masked with -key)
  key       generate a random key and print it with its fingerprint
  encode    turn raw v7 values into v4 facades (-key)
  decode    turn v4 facades back into raw v7 values (-key)
  inspect   show version, timestamp and payload of values
  bench     measure encode and decode throughput
  demo      run the round-trip demonstration

Keys are given with -key or the %s environment variable, in
"k0hex:k1hex" or 32-hex-digit form.
`, keyEnv)
}

// resolveKey reads the key from the flag value or the environment.
func resolveKey(s string) (uuidv47.Key, error) {
	if s == "" {
		s = os.Getenv(keyEnv)
	}
	if s == "" {
		return uuidv47.Key{}, fmt.Errorf("no key given: pass -key or set %s", keyEnv)
	}
	return uuidv47.ParseKey(s)
}

// inputs returns the UUIDs to operate on: the positional arguments,
// or one per stdin line when none are given.
func inputs(fs *flag.FlagSet) ([]uuidv47.UUID, error) {
	var ids []uuidv47.UUID
	if fs.NArg() > 0 {
		for _, arg := range fs.Args() {
			u, err := uuidv47.Parse(arg)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", arg, err)
			}
			ids = append(ids, u)
		}
		return ids, nil
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		u, err := uuidv47.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", line, err)
		}
		ids = append(ids, u)
	}
	return ids, sc.Err()
}

func cmdNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	n := fs.Int("n", 1, "number of values to generate")
	masked := fs.Bool("masked", false, "print the v4 facade instead of the raw value")
	keyStr := fs.String("key", "", "key material, required with -masked")
	fs.Parse(args)

	var key uuidv47.Key
	if *masked {
		var err error
		if key, err = resolveKey(*keyStr); err != nil {
			return err
		}
	}

	for i := 0; i < *n; i++ {
		u := uuidv47.New()
		if *masked {
			u = uuidv47.Encode(u, key)
		}
		fmt.Println(u)
	}
	return nil
}

func cmdKey(args []string) error {
	fs := flag.NewFlagSet("key", flag.ExitOnError)
	fs.Parse(args)

	k := uuidv47.NewKey()
	b := k.Bytes()
	fmt.Printf("%x:%x\n", b[:8], b[8:])
	fmt.Printf("fingerprint %s\n", k.Fingerprint())
	return nil
}

func cmdEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	keyStr := fs.String("key", "", "key material")
	fs.Parse(args)

	key, err := resolveKey(*keyStr)
	if err != nil {
		return err
	}
	ids, err := inputs(fs)
	if err != nil {
		return err
	}
	for _, u := range ids {
		if u.Version() != 7 {
			return fmt.Errorf("%s: not a version 7 value", u)
		}
		fmt.Println(uuidv47.Encode(u, key))
	}
	return nil
}

func cmdDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	keyStr := fs.String("key", "", "key material")
	fs.Parse(args)

	key, err := resolveKey(*keyStr)
	if err != nil {
		return err
	}
	ids, err := inputs(fs)
	if err != nil {
		return err
	}
	for _, u := range ids {
		if u.Version() != 4 {
			return fmt.Errorf("%s: not a version 4 facade", u)
		}
		fmt.Println(uuidv47.Decode(u, key))
	}
	return nil
}

func cmdInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	keyStr := fs.String("key", "", "key material, shows the counterpart value when set")
	fs.Parse(args)

	var key uuidv47.Key
	haveKey := false
	if *keyStr != "" || os.Getenv(keyEnv) != "" {
		var err error
		if key, err = resolveKey(*keyStr); err != nil {
			return err
		}
		haveKey = true
	}

	ids, err := inputs(fs)
	if err != nil {
		return err
	}
	for _, u := range ids {
		p := u.Payload()
		fmt.Printf("value     %s\n", u)
		fmt.Printf("version   %d\n", u.Version())
		fmt.Printf("payload   %x\n", p)
		switch u.Version() {
		case 7:
			fmt.Printf("timestamp %s\n", u.Timestamp().UTC().Format(time.RFC3339Nano))
			if haveKey {
				fmt.Printf("facade    %s\n", uuidv47.Encode(u, key))
			}
		case 4:
			if haveKey {
				raw := uuidv47.Decode(u, key)
				fmt.Printf("raw       %s\n", raw)
				fmt.Printf("timestamp %s\n", raw.Timestamp().UTC().Format(time.RFC3339Nano))
			}
		}
		fmt.Println()
	}
	return nil
}

func cmdBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	n := fs.Int("n", 5000000, "iterations per round")
	warmup := fs.Int("w", 100000, "warmup iterations")
	rounds := fs.Int("r", 3, "rounds, best is reported")
	quiet := fs.Bool("q", false, "suppress the checksum line")
	fs.Parse(args)

	key := uuidv47.NewKey()
	id := uuidv47.New()
	facade := uuidv47.Encode(id, key)

	// Checksum defeats dead code elimination.
	var acc byte

	for i := 0; i < *warmup; i++ {
		acc ^= uuidv47.Encode(id, key)[0]
		acc ^= uuidv47.Decode(facade, key)[0]
	}

	bench := func(name string, fn func() uuidv47.UUID) {
		best := time.Duration(1<<63 - 1)
		for r := 0; r < *rounds; r++ {
			start := time.Now()
			for i := 0; i < *n; i++ {
				acc ^= fn()[0]
			}
			if d := time.Since(start); d < best {
				best = d
			}
		}
		perOp := float64(best.Nanoseconds()) / float64(*n)
		fmt.Printf("%s  %d ops in %v  (%.1f ns/op, %.2f Mops/s)\n",
			name, *n, best.Round(time.Millisecond), perOp, 1e3/perOp)
	}

	bench("encode", func() uuidv47.UUID { return uuidv47.Encode(id, key) })
	bench("decode", func() uuidv47.UUID { return uuidv47.Decode(facade, key) })

	if !*quiet {
		fmt.Printf("checksum %02x\n", acc)
	}
	return nil
}

func cmdDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	keyStr := fs.String("key", "", "key material, defaults to the documentation key")
	fs.Parse(args)

	key := uuidv47.Key{K0: 0x0123456789abcdef, K1: 0xfedcba9876543210}
	if *keyStr != "" {
		var err error
		if key, err = uuidv47.ParseKey(*keyStr); err != nil {
			return err
		}
	}

	idV7, err := uuidv47.Parse("018f2d9f-9a2a-7def-8c3f-7b1a2c4d5e6f")
	if err != nil {
		return err
	}

	facade := uuidv47.Encode(idV7, key)
	back := uuidv47.Decode(facade, key)

	fmt.Printf("v7 in : %s\n", idV7)
	fmt.Printf("v4 out: %s\n", facade)
	fmt.Printf("back  : %s\n", back)

	if back != idV7 {
		return errors.New("round trip failed")
	}
	return nil
}
