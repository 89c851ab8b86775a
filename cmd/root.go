package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	debugFlag bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chirp8 [command]",
	Short: "CHIP-8 emulator with a debug overlay and disassembler",
	Long: "chirp8 emulates the CHIP-8 virtual machine, an interpreted " +
		"instruction set designed for the COSMAC VIP and Telmac 1800 " +
		"8-bit microcomputers. It ships a graphical emulator with a " +
		"debug overlay and a standalone ROM disassembler.",
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chirp8.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// Execute runs the root command. On error the process exits nonzero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		newLogger().Fatal(err.Error())
	}
}

func newLogger() *log.Logger {
	cfg := log.DefaultConfig()
	if debugFlag {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory with name ".chirp8" (without extension).
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigName(".chirp8")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
