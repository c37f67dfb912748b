package cli

import (
	"fmt"

	"github.com/diillson/billing-alerts-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner() {
	banner := `
     ____  _ _ _ _                  _    _           _
    | __ )(_) | (_)_ __   __ _     / \  | | ___ _ __| |_ ___
    |  _ \| | | | | '_ \ / _' |   / _ \ | |/ _ \ '__| __/ __|
    | |_) | | | | | | | | (_| |  / ___ \| |  __/ |  | |_\__ \
    |____/|_|_|_|_|_| |_|\__, | /_/   \_\_|\___|_|   \__|___/
                         |___/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("Billing Alerts (v%s)", formattedVersion)))
}
