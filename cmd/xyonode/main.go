// Command xyonode is a minimal bootstrap binary demonstrating the
// protocol engine's wiring end to end: packer registry, origin-chain
// repository, TCP-framed pipe, and handler. Node bootstrap, discovery
// and bridge/sentinel role selection are named out of scope for the
// *core engine* in spec.md §1; this is the thin runnable entry point a
// real node would still ship on top of it, in the teacher's
// flag-parsed, preset-driven cmd/ style.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/xyo-network/origin-chain/boundwitness"
	"github.com/xyo-network/origin-chain/config"
	"github.com/xyo-network/origin-chain/driver"
	"github.com/xyo-network/origin-chain/handler"
	"github.com/xyo-network/origin-chain/heuristic"
	"github.com/xyo-network/origin-chain/internal/logging"
	"github.com/xyo-network/origin-chain/internal/metrics"
	"github.com/xyo-network/origin-chain/originchain"
	"github.com/xyo-network/origin-chain/packer"
	"github.com/xyo-network/origin-chain/payload"
	"github.com/xyo-network/origin-chain/xyocrypto"
	"github.com/xyo-network/origin-chain/zigzag"
)

func main() {
	network := flag.String("network", "local", "Preset to boot from: mainnet, testnet, or local")
	listenAddr := flag.String("listen", "127.0.0.1:0", "Address to accept inbound bound-witness sessions on")
	dialAddr := flag.String("dial", "", "If set, also dial this address and run one outbound session")
	logLevel := flag.String("log-level", "", "Override the preset's log level")
	repoPath := flag.String("repo-path", "", "Override the preset's pebble repository path")
	flag.Parse()

	var base config.Config
	switch *network {
	case "mainnet":
		base = config.Mainnet
	case "testnet":
		base = config.Testnet
	case "local":
		base = config.Local
	default:
		fmt.Fprintf(os.Stderr, "unknown -network %q: want mainnet, testnet, or local\n", *network)
		os.Exit(2)
	}
	cfg := config.NewBuilder(base).
		WithLogLevel(*logLevel).
		Build()
	if *repoPath != "" {
		cfg.RepositoryBackend = config.RepositoryBackendPebble
		cfg.RepositoryPath = *repoPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(cfg.LogLevel)
	m := metrics.NewNoOp()

	p := packer.New()
	for _, reg := range []func(*packer.Packer) error{
		packer.RegisterMultiTypeArray,
		xyocrypto.RegisterDefaults,
		heuristic.RegisterDefaults,
		payload.RegisterDefaults,
		boundwitness.RegisterDefaults,
		zigzag.RegisterDefaults,
	} {
		if err := reg(p); err != nil {
			log.Error("packer registration failed", "err", err)
			os.Exit(1)
		}
	}

	repo, closeRepo, err := openRepository(cfg, p)
	if err != nil {
		log.Error("could not open repository", "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	genesis, err := xyocrypto.NewSecp256k1Signer()
	if err != nil {
		log.Error("could not generate genesis signer", "err", err)
		os.Exit(1)
	}
	if _, ok := repo.GetGenesisSigner(); !ok {
		if err := repo.SetCurrentSigners([]xyocrypto.Signer{genesis}); err != nil {
			log.Error("could not seed genesis signer", "err", err)
			os.Exit(1)
		}
	}

	hashProvider := xyocrypto.Keccak256Provider{}
	listener := handler.SuccessListenerFunc(func(_ context.Context, bw boundwitness.BoundWitness, participantIndex int) error {
		log.Info("bound witness complete", "participants", len(bw.PublicKeys), "our_slot", participantIndex)
		return nil
	})
	h := handler.New(p, repo, listener, hashProvider, log, m)

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Error("could not listen", "addr", *listenAddr, "err", err)
		os.Exit(1)
	}
	defer ln.Close()
	log.Info("listening", "addr", ln.Addr().String())

	go acceptLoop(ln, h, log)

	if *dialAddr != "" {
		runOutbound(h, cfg, *dialAddr, log)
	}

	select {}
}

// openRepository builds the Repository backend cfg selects, per §6
// "Repository interface ... backend may be in-memory or persistent."
func openRepository(cfg config.Config, p *packer.Packer) (originchain.Repository, func(), error) {
	switch cfg.RepositoryBackend {
	case config.RepositoryBackendPebble:
		repo, err := originchain.OpenPebbleRepository(cfg.RepositoryPath, p)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	default:
		return originchain.NewMemoryRepository(p), func() {}, nil
	}
}

func acceptLoop(ln net.Listener, h *handler.Handler, log logging.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Warn("accept failed, stopping accept loop", "err", err)
			return
		}
		go func() {
			pipe := driver.NewTCPPipe(conn)
			defer pipe.Close()

			first, err := pipe.Receive(context.Background())
			if err != nil {
				log.Warn("inbound session: failed reading first message", "err", err)
				return
			}
			if _, err := h.HandleInbound(context.Background(), pipe, first); err != nil {
				log.Warn("inbound session failed", "err", err)
			}
		}()
	}
}

func runOutbound(h *handler.Handler, cfg config.Config, addr string, log logging.Logger) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Error("could not dial peer", "addr", addr, "err", err)
		return
	}
	pipe := driver.NewTCPPipe(conn)
	defer pipe.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PipeTimeout)
	defer cancel()

	if _, err := h.HandleOutbound(ctx, pipe, driver.Catalogue(cfg.DefaultCatalogue)); err != nil {
		log.Error("outbound session failed", "addr", addr, "err", err)
	}
}
