package connector

var infuraNetworks = map[int64]string{
	1:  "mainnet",
	3:  "ropsten",
	4:  "rinkeby",
	5:  "goerli",
	42: "kovan",
}

// RPCURL returns the Infura endpoint for chainID, or "" when Infura does
// not serve that chain.
func RPCURL(chainID int64, infuraID string) string {
	network, ok := infuraNetworks[chainID]
	if !ok || infuraID == "" {
		return ""
	}
	return "https://" + network + ".infura.io/v3/" + infuraID
}
