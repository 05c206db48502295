package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/redline/internal/checkers"
	"github.com/dshills/redline/internal/config"
)

var checkersCmd = &cobra.Command{
	Use:   "checkers",
	Short: "List configured checkers and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}

		enabled := make(map[string]bool)
		for _, name := range cfg.EnabledCheckers() {
			enabled[name] = true
		}

		chkCfg := checkers.Config{
			ChktexBinary:         cfg.Checkers.Chktex.Binary,
			ValeBinary:           cfg.Checkers.Vale.Binary,
			CodespellBinary:      cfg.Checkers.Codespell.Binary,
			LatexindentBinary:    cfg.Checkers.Latexindent.Binary,
			LanguageToolURL:      cfg.Checkers.LanguageTool.Server,
			LanguageToolLanguage: cfg.Checkers.LanguageTool.Language,
		}

		fmt.Fprintf(os.Stdout, "%-14s %-9s %s\n", "CHECKER", "ENABLED", "AVAILABLE")
		for _, name := range checkers.Names() {
			chk, err := checkers.New(name, chkCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%-14s %-9v %v\n", name, enabled[name], chk.Available())
		}
		return nil
	},
}
