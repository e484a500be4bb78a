package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/simplechain-go/authcore/chain"
	"github.com/simplechain-go/authcore/config"
	"github.com/simplechain-go/authcore/crypto"
	"github.com/simplechain-go/authcore/log"
	"github.com/simplechain-go/authcore/wallet"
)

// metadata bundles the config, demo account book, signer and logger every
// subcommand needs; it is stashed on the app and pulled back out of
// c.App.Metadata the way bitmark-cli's commands pull their config.
type metadata struct {
	auth    config.Authorization
	book    *chain.AccountBook
	sw      *wallet.SoftWallet
	account chain.AccountID
	log     *zap.SugaredLogger
}

func main() {
	logger := log.New("txauth")

	app := cli.NewApp()
	app.Name = "txauth"
	app.Usage = "sign, verify and minimize signatures for a demo transfer against a demo account book"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config-dir", Value: ".", Usage: "directory holding authcore.yaml"},
		cli.StringFlag{Name: "fixture", Value: "", Usage: "path to a JSON account-book fixture (uses an in-code demo account when empty)"},
		cli.StringFlag{Name: "account", Value: "alice", Usage: "account whose active authority signs the demo transfer"},
	}
	app.Before = func(c *cli.Context) error {
		auth, err := config.Load(c.GlobalString("config-dir"), "authcore")
		if err != nil {
			return log.Wrap(err, "load config")
		}

		var book *chain.AccountBook
		var keys map[string]*crypto.PrivateKey
		if fixture := c.GlobalString("fixture"); fixture != "" {
			book, keys, err = loadFixture(fixture)
		} else {
			book, keys, err = demoFixture()
		}
		if err != nil {
			return log.Wrap(err, "load account book")
		}

		sw := &wallet.SoftWallet{Keys: keys, WalletName: "txauth-demo"}

		c.App.Metadata["config"] = &metadata{
			auth:    auth,
			book:    book,
			sw:      sw,
			account: chain.AccountID(c.GlobalString("account")),
			log:     logger,
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "sign",
			Usage:  "sign a demo transfer with the configured account's active key(s)",
			Action: runSign,
		},
		{
			Name:   "verify",
			Usage:  "verify a signed demo transfer's authority",
			Action: runVerify,
		},
		{
			Name:   "minimize",
			Usage:  "minimize the signature set required to authorize a demo transfer",
			Action: runMinimize,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func demoTransaction(account chain.AccountID) *chain.Transaction {
	return &chain.Transaction{
		TransactionHeader: chain.TransactionHeader{
			RefBlockNum:    0,
			RefBlockPrefix: 0,
			Expiration:     0,
		},
		Operations: []chain.Operation{
			chain.TransferOperation{From: account, To: "bob", Amount: 100, Memo: "txauth demo"},
		},
	}
}

func demoSign(md *metadata) (*chain.SignedTransaction, error) {
	tx := demoTransaction(md.account)
	signed := chain.NewSignedTransaction(tx)

	active, err := md.book.GetActive(md.account)
	if err != nil {
		return nil, err
	}
	for _, ka := range active.KeyAuths {
		priv, err := md.sw.GetPrivateKey(ka.Key)
		if err != nil {
			continue
		}
		if err := signed.Sign(priv, md.auth.ChainID); err != nil {
			return nil, err
		}
	}
	return signed, nil
}

func runSign(c *cli.Context) error {
	md := c.App.Metadata["config"].(*metadata)
	signed, err := demoSign(md)
	if err != nil {
		return log.Wrap(err, "sign")
	}
	md.log.Infow("signed demo transfer", "account", md.account, "signatures", len(signed.Signatures))
	fmt.Printf("signed with %d signature(s) for account %q\n", len(signed.Signatures), md.account)
	return nil
}

func runVerify(c *cli.Context) error {
	md := c.App.Metadata["config"].(*metadata)
	signed, err := demoSign(md)
	if err != nil {
		return log.Wrap(err, "sign")
	}
	recovered, err := signed.GetSignatureKeys(md.auth.ChainID)
	if err != nil {
		return log.Wrap(err, "recover signature keys")
	}

	cfg := md.auth.VerifyConfig(md.book.GetActive, md.book.GetOwner, md.book.GetCustom)
	err = chain.VerifyAuthority(signed.Operations, recovered, nil, cfg)
	if err != nil {
		md.log.Errorw("verify authority failed", "error", err)
		return log.Wrap(err, "verify authority")
	}
	md.log.Infow("verify authority satisfied", "account", md.account)
	fmt.Println("authority satisfied")
	return nil
}

func runMinimize(c *cli.Context) error {
	md := c.App.Metadata["config"].(*metadata)
	signed, err := demoSign(md)
	if err != nil {
		return log.Wrap(err, "sign")
	}
	recovered, err := signed.GetSignatureKeys(md.auth.ChainID)
	if err != nil {
		return log.Wrap(err, "recover signature keys")
	}

	cfg := md.auth.VerifyConfig(md.book.GetActive, md.book.GetOwner, md.book.GetCustom)
	minimal, err := chain.MinimizeRequiredSignatures(signed.Operations, nil, recovered, cfg)
	if err != nil {
		return log.Wrap(err, "minimize required signatures")
	}
	md.log.Infow("minimized signature set", "count", len(minimal))
	fmt.Printf("minimal signature set has %d key(s)\n", len(minimal))
	for _, k := range minimal {
		fmt.Println(" -", k.String())
	}
	return nil
}
