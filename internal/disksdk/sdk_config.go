package disksdk

// DiskSDKConfig is the configuration for the DiskSDK
type DiskSDKConfig struct {
	BaseURL string // BaseURL is optional, defaults to the public API
	Token   string // Token is the OAuth token, required
	Folder  string // Folder is the remote root all paths are relative to
}

func (c *DiskSDKConfig) Validate() error {
	if c.Token == "" {
		return ErrNoToken
	}

	if c.Folder == "" {
		return ErrNoFolder
	}

	return nil
}
