package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pornin/go-tiny-dsa/internal/store"
	"github.com/pornin/go-tiny-dsa/primes"
	"github.com/pornin/go-tiny-dsa/tinydsa"
)

// errInvalidSignature makes the process exit with status 1 after a
// failed verification.
var errInvalidSignature = errors.New("signature is not valid")

func primesCmd(a *app) *cobra.Command {
	var bound uint64
	cmd := &cobra.Command{
		Use:   "primes",
		Short: "Build the prime table and print its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bound == 0 {
				bound = a.cfg.PrimeBound
			}
			table := primes.Sieve(bound)
			if len(table) == 0 {
				return errors.Errorf("no prime below %d", bound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "primes: %d\nlargest: %d\n",
				len(table), table[len(table)-1])
			return nil
		},
	}
	cmd.Flags().Uint64Var(&bound, "max", 0, "table bound (default: configured prime bound)")
	return cmd
}

func paramsCmd(a *app) *cobra.Command {
	var (
		name     string
		set      string
		minIndex int
		maxIndex int
	)
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Generate and store named domain parameters, or list them",
		Long: "With --name, generate domain parameters (or import them with --set p:q:g)\n" +
			"and store them under that name. Without --name, list stored parameters.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if name == "" {
				sets, err := db.ParamSets()
				if err != nil {
					return err
				}
				for _, ps := range sets {
					fmt.Fprintf(out, "%s %s\n", ps.Name, ps.Parameters())
				}
				return nil
			}

			var pp tinydsa.Parameters
			if set != "" {
				if pp, err = tinydsa.ParseParameters(set); err != nil {
					return err
				}
			} else {
				if !cmd.Flags().Changed("min") {
					minIndex = a.cfg.MinIndex
				}
				if !cmd.Flags().Changed("max") {
					maxIndex = a.cfg.MaxIndex
				}
				table := primes.Sieve(a.cfg.PrimeBound)
				a.log.Info().Int("primes", len(table)).Msg("prime table ready")
				pp, err = tinydsa.GenerateParameters(a.tiny("params"), table, minIndex, maxIndex)
				if err != nil {
					return err
				}
			}
			if _, err := db.SaveParameters(name, pp); err != nil {
				return err
			}
			a.log.Info().Str("name", name).Stringer("params", pp).Msg("parameters stored")
			fmt.Fprintln(out, pp)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name to store the parameters under")
	cmd.Flags().StringVar(&set, "set", "", "import explicit parameters p:q:g instead of generating")
	cmd.Flags().IntVar(&minIndex, "min", 0, "lowest prime table index (default: middle of the table)")
	cmd.Flags().IntVar(&maxIndex, "max", 0, "prime table index bound (default: end of the table)")
	return cmd
}

func keygenCmd(a *app) *cobra.Command {
	var paramsName, owner string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate and store a key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			ps, err := db.ParamSet(paramsName)
			if err != nil {
				return err
			}
			kp, err := tinydsa.GenerateKey(a.tiny("keygen/"+owner), ps.Parameters())
			if err != nil {
				return err
			}
			if _, err := db.SaveKey(owner, ps, kp); err != nil {
				return err
			}
			a.log.Info().Str("owner", owner).Str("params", paramsName).Msg("key pair stored")
			fmt.Fprintf(cmd.OutOrStdout(), "public: %d\n", kp.Public)
			return nil
		},
	}
	cmd.Flags().StringVar(&paramsName, "params", "", "name of the stored parameters")
	cmd.Flags().StringVar(&owner, "name", "", "key owner name")
	_ = cmd.MarkFlagRequired("params")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func hashCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "hash TEXT",
		Short: "Print the digest chunks of a text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashFor(mode)
			if err != nil {
				return err
			}
			digest := hash([]byte(args[0]))
			parts := make([]string, len(digest))
			for i, h := range digest {
				if h == tinydsa.NullDigest {
					parts[i] = "null"
					continue
				}
				parts[i] = fmt.Sprint(h)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", modeChunks, "digest mode: chunks, collapsed or shake")
	return cmd
}

// Load a stored key with its parameters.
func (a *app) key(owner string) (*store.DB, *store.KeyRecord, error) {
	db, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	kr, err := db.Key(owner)
	if err != nil {
		return nil, nil, err
	}
	return db, kr, nil
}

func signCmd(a *app) *cobra.Command {
	var owner, mode string
	cmd := &cobra.Command{
		Use:   "sign TEXT",
		Short: "Sign a text with a stored key and print the encoded signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashFor(mode)
			if err != nil {
				return err
			}
			db, kr, err := a.key(owner)
			if err != nil {
				return err
			}
			pp := kr.ParamSet.Parameters()
			sig, err := tinydsa.Sign(a.tiny("sign/"+owner), pp, kr.Private, []byte(args[0]), hash)
			if err != nil {
				return err
			}
			enc := tinydsa.EncodeSignature(pp.Q, sig)
			if _, err := db.SaveSignature(kr, args[0], mode, enc); err != nil {
				return err
			}
			a.log.Debug().Str("owner", owner).Int("pairs", len(sig)).Msg("text signed")
			fmt.Fprintln(cmd.OutOrStdout(), enc)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "key", "", "key owner name")
	cmd.Flags().StringVar(&mode, "mode", modeChunks, "digest mode: chunks, collapsed or shake")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func verifyCmd(a *app) *cobra.Command {
	var owner, encoded, mode string
	cmd := &cobra.Command{
		Use:   "verify TEXT",
		Short: "Verify an encoded signature of a text against a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hashFor(mode)
			if err != nil {
				return err
			}
			_, kr, err := a.key(owner)
			if err != nil {
				return err
			}
			pp := kr.ParamSet.Parameters()
			ok := false
			if sig, err := tinydsa.DecodeSignature(pp.Q, encoded); err == nil {
				ok = tinydsa.Verify(pp, kr.Public, sig, []byte(args[0]), hash)
			} else {
				a.log.Debug().Err(err).Msg("signature not decoded")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			if !ok {
				return errInvalidSignature
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "key", "", "key owner name")
	cmd.Flags().StringVar(&encoded, "sig", "", "encoded signature")
	cmd.Flags().StringVar(&mode, "mode", modeChunks, "digest mode: chunks, collapsed or shake")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}
