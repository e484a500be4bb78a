package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/simplechain-go/authcore/chain"
	"github.com/simplechain-go/authcore/crypto"
)

// Authorization is the immutable set of consensus-critical constants the
// verification orchestrator needs. The core itself has no global mutable
// configuration state; callers load one of these and pass it in explicitly.
type Authorization struct {
	MaxRecursionDepth         int
	ChainID                   chain.SHA256Type
	CommitteeAccount          chain.AccountID
	TempAccount               chain.AccountID
	AllowCommittee            bool
	AllowNonImmediateOwner    bool
	IgnoreCustomRequiredAuths bool
	LegacyAddressVersions     [2]byte
}

const (
	keyMaxRecursionDepth         = "max_recursion_depth"
	keyChainID                   = "chain_id"
	keyCommitteeAccount          = "committee_account"
	keyTempAccount               = "temp_account"
	keyAllowCommittee            = "allow_committee"
	keyAllowNonImmediateOwner    = "allow_non_immediate_owner"
	keyIgnoreCustomRequiredAuths = "ignore_custom_required_auths"
)

func defaults(v *viper.Viper) {
	v.SetDefault(keyMaxRecursionDepth, 2)
	v.SetDefault(keyChainID, "")
	v.SetDefault(keyCommitteeAccount, string(chain.CommitteeAccount))
	v.SetDefault(keyTempAccount, string(chain.TempAccount))
	v.SetDefault(keyAllowCommittee, false)
	v.SetDefault(keyAllowNonImmediateOwner, true)
	v.SetDefault(keyIgnoreCustomRequiredAuths, false)
}

// Load reads configName (without extension) from configDir (falling back to
// the current directory), overridable by AUTHCORE_-prefixed environment
// variables, and returns the resolved Authorization.
func Load(configDir, configName string) (Authorization, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("AUTHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir == "" {
		configDir = "."
	}
	v.AddConfigPath(configDir)
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Authorization{}, err
		}
	}

	var chainID chain.SHA256Type
	copy(chainID[:], []byte(v.GetString(keyChainID)))

	return Authorization{
		MaxRecursionDepth:         v.GetInt(keyMaxRecursionDepth),
		ChainID:                   chainID,
		CommitteeAccount:          chain.AccountID(v.GetString(keyCommitteeAccount)),
		TempAccount:               chain.AccountID(v.GetString(keyTempAccount)),
		AllowCommittee:            v.GetBool(keyAllowCommittee),
		AllowNonImmediateOwner:    v.GetBool(keyAllowNonImmediateOwner),
		IgnoreCustomRequiredAuths: v.GetBool(keyIgnoreCustomRequiredAuths),
		LegacyAddressVersions:     crypto.LegacyAddressVersions,
	}, nil
}

// VerifyConfig adapts the loaded Authorization into the chain package's
// VerifyConfig, wiring in the caller-supplied chain-state accessors.
func (a Authorization) VerifyConfig(active chain.ActiveAuthorityLookup, owner chain.OwnerAuthorityLookup, custom chain.CustomAuthorityLookup) chain.VerifyConfig {
	return chain.VerifyConfig{
		GetActive:                 active,
		GetOwner:                  owner,
		GetCustom:                 custom,
		AllowNonImmediateOwner:    a.AllowNonImmediateOwner,
		IgnoreCustomRequiredAuths: a.IgnoreCustomRequiredAuths,
		MaxRecursion:              a.MaxRecursionDepth,
		AllowCommittee:            a.AllowCommittee,
		CommitteeAccount:          a.CommitteeAccount,
		TempAccount:               a.TempAccount,
	}
}
