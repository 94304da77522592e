package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"tipledger/config"
	"tipledger/core/state"
	"tipledger/crypto"
	"tipledger/native/tipping"
	"tipledger/storage"
)

const defaultConfig = "./config.toml"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}
	if err := dispatch(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "init-config":
		return runInitConfig(args, out)
	case "keygen":
		return runKeygen(out)
	case "derive":
		return runDerive(args, out)
	case "inspect":
		return runInspect(args, out)
	case "help", "-h", "--help":
		usage(out)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: tipctl <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  init-config  write a default node configuration")
	fmt.Fprintln(w, "  keygen       generate an identity key pair")
	fmt.Fprintln(w, "  derive       print the record key for a namespace and owners")
	fmt.Fprintln(w, "  inspect      print a profile, vault and balance from a stopped node's store")
}

func runInitConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	path := fs.String("config", defaultConfig, "Path of the configuration file to create")
	force := fs.Bool("force", false, "Overwrite an existing configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *path)
	}
	if err := config.Write(*path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", *path)
	return nil
}

func runKeygen(out io.Writer) error {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	return render(out, map[string]string{
		"address":    key.PubKey().Address().String(),
		"privateKey": hex.EncodeToString(key.Bytes()),
	})
}

func runDerive(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("derive", flag.ContinueOnError)
	namespace := fs.String("namespace", "", "Record namespace, e.g. profile or vault")
	owners := fs.String("owners", "", "Comma separated identities (tip1... or 0x...)")
	id := fs.Uint64("id", 0, "Numeric record id appended after the owners (goals, polls, gates)")
	withID := fs.Bool("with-id", false, "Append -id to the derivation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*namespace) == "" {
		return errors.New("namespace required")
	}
	segments := make([][]byte, 0, 4)
	for _, raw := range strings.Split(*owners, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		owner, err := crypto.ParseIdentity(raw)
		if err != nil {
			return fmt.Errorf("owner %q: %w", raw, err)
		}
		segments = append(segments, owner[:])
	}
	if *withID {
		segments = append(segments, crypto.Uint64Bytes(*id))
	}
	key := crypto.DeriveAddress(*namespace, segments...)
	return render(out, map[string]string{
		"namespace": *namespace,
		"key":       "0x" + hex.EncodeToString(key[:]),
		"identity":  crypto.FormatIdentity(crypto.DeriveIdentity(*namespace, segments...)),
	})
}

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	path := fs.String("config", defaultConfig, "Path to the node configuration file")
	ownerFlag := fs.String("owner", "", "Identity or username to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	db, err := storage.Open(cfg.StorageBackend, cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	return inspect(tipping.NewEngine(state.NewTippingStore(db)), *ownerFlag, out)
}

func inspect(engine *tipping.Engine, ref string, out io.Writer) error {
	var (
		profile *tipping.Profile
		err     error
	)
	if owner, parseErr := crypto.ParseIdentity(ref); parseErr == nil {
		profile, err = engine.Profile(owner)
	} else {
		profile, err = engine.ProfileByUsername(ref)
	}
	if err != nil {
		return err
	}
	report := map[string]any{
		"owner":         crypto.FormatIdentity(profile.Owner),
		"username":      profile.Username,
		"tipCount":      profile.TipCount,
		"totalReceived": profile.TotalReceived,
		"uniqueTippers": profile.UniqueTippers,
	}
	if vault, err := engine.Vault(profile.Owner); err == nil {
		report["vaultBalance"] = vault.Balance
		report["withdrawable"] = vault.Withdrawable()
	} else if !errors.Is(err, tipping.ErrVaultNotInitialized) {
		return err
	}
	balance, err := engine.Balance(profile.Owner)
	if err != nil {
		return err
	}
	report["balance"] = balance
	return render(out, report)
}

// render prints indented JSON on a terminal and compact JSON otherwise.
func render(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
