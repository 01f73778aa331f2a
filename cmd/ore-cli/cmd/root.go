// Package cmd wires the ore-cli commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flashbots/go-utils/cli"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crypt0miester/ore-cli-v2/miner"
)

var (
	version = "dev" // is set during build process

	// Default values
	defaultRPC      = cli.GetEnv("RPC_URL", rpc.MainNetBeta_RPC)
	defaultKeypair  = cli.GetEnv("KEYPAIR", "")
	defaultFolder   = cli.GetEnv("KEYPAIR_FOLDER", "")
	defaultFeePayer = cli.GetEnv("FEE_PAYER", "")
	defaultDebug    = os.Getenv("DEBUG") == "1"
	defaultLogProd  = os.Getenv("LOG_PROD") == "1"

	// Persistent flags
	rpcURL       string
	keypairPath  string
	folderPath   string
	feePayerPath string
	priorityFee  uint64
	debug        bool
	logProd      bool
)

var rootCmd = &cobra.Command{
	Use:           "ore-cli",
	Short:         "ORE mining client with bundled relay submission",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rpcURL, "rpc", defaultRPC, "network address of the RPC provider")
	pf.StringVar(&keypairPath, "keypair", defaultKeypair, "filepath to the keypair to mine with")
	pf.StringVar(&folderPath, "folder-path", defaultFolder, "folder with keypairs to mine concurrently")
	pf.StringVar(&feePayerPath, "fee-payer", defaultFeePayer, "filepath to the fee payer keypair")
	pf.Uint64Var(&priorityFee, "priority-fee", 0, "priority fee in microlamports per transaction")
	pf.BoolVar(&debug, "debug", defaultDebug, "print debug output")
	pf.BoolVar(&logProd, "log-prod", defaultLogProd, "log in production mode (json)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	if logProd {
		atom := zap.NewAtomicLevel()
		if debug {
			atom.SetLevel(zap.DebugLevel)
		}

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		logger = zap.New(zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(os.Stdout),
			atom,
		))
	}
	return logger
}

// newMiner builds the miner from the persistent flags. relay may be nil for
// read-only commands.
func newMiner(logger *zap.Logger, relay miner.RelayClient) (*miner.Miner, error) {
	signers, err := loadSigners(logger)
	if err != nil {
		return nil, err
	}

	var feePayer solana.PrivateKey
	if feePayerPath != "" {
		feePayer, err = solana.PrivateKeyFromSolanaKeygenFile(feePayerPath)
		if err != nil {
			return nil, fmt.Errorf("load fee payer: %w", err)
		}
	}

	return miner.New(logger, rpc.New(rpcURL), miner.Config{
		Signers:     signers,
		FeePayer:    feePayer,
		PriorityFee: priorityFee,
		Relay:       relay,
	})
}

// loadSigners loads every keypair under --folder-path (skipping the fee
// payer's payer.json), or the single --keypair.
func loadSigners(logger *zap.Logger) ([]solana.PrivateKey, error) {
	if folderPath != "" {
		var signers []solana.PrivateKey
		err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() == "payer.json" {
				return nil
			}
			key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
			if err != nil {
				logger.Warn("Skipping unreadable keypair file", zap.String("path", path), zap.Error(err))
				return nil
			}
			signers = append(signers, key)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk keypair folder: %w", err)
		}
		return signers, nil
	}

	if keypairPath != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
		if err != nil {
			return nil, fmt.Errorf("load keypair: %w", err)
		}
		return []solana.PrivateKey{key}, nil
	}

	return nil, errors.New("no keypair provided, set --keypair or --folder-path")
}
