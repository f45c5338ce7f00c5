package models

// SystemConfig is one key/value system setting.
type SystemConfig struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	IsEncrypted bool   `json:"isEncrypted"`
}

type SFTPConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
	RemotePath string `json:"remotePath"`
	Enabled    bool   `json:"enabled"`
}

type SFTPTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ACHConfig holds the file header identifiers used when generating NACHA files.
type ACHConfig struct {
	ImmediateOrigin          string `json:"immediateOrigin"`
	ImmediateOriginName      string `json:"immediateOriginName"`
	ImmediateDestination     string `json:"immediateDestination"`
	ImmediateDestinationName string `json:"immediateDestinationName"`
	CompanyName              string `json:"companyName"`
	CompanyID                string `json:"companyId"`
	OriginatingDFI           string `json:"originatingDfi"`
	CompanyEntryDescription  string `json:"companyEntryDescription,omitempty"`
}
