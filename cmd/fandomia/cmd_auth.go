package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fandomia/internal/remote"
)

var (
	authEmail    string
	authPassword string
	signupName   string
	signupPhone  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign this device in",
	Long: `Sign this device in and sync the cart. The password may also come from
FANDOMIA_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign this device out; the device cart is kept",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a customer account",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (or set FANDOMIA_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&signupName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&signupPhone, "phone", "", "Phone (optional)")
	_ = signupCmd.MarkFlagRequired("name")
}

func password() (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	if p := os.Getenv("FANDOMIA_PASSWORD"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("a password is required (--password or FANDOMIA_PASSWORD)")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	pw, err := password()
	if err != nil {
		return err
	}
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := d.front.Login(ctx, authEmail, pw)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	printf(cmd, "Signed in as %s\n", id.Email)

	res := d.cart.SyncCartToDbIfClient(ctx)
	printf(cmd, "Cart: %d item(s), sync %s\n", d.cart.CartCount(ctx), describeSync(res))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.front.Logout(ctx); err != nil {
		printf(cmd, "Signed out locally (%v)\n", err)
		return nil
	}
	printf(cmd, "Signed out\n")
	return nil
}

func runSignup(cmd *cobra.Command, _ []string) error {
	ctx := cmdContext(cmd)
	pw, err := password()
	if err != nil {
		return err
	}
	d, err := openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := d.front.SignUp(ctx, remote.SignUpRequest{
		Email: authEmail, Password: pw, FullName: signupName, Phone: signupPhone,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	printf(cmd, "Account created for %s; run `fandomia login` to sign in\n", id.Email)
	return nil
}
