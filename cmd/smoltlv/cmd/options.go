package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/logicossoftware/go-smoltlv"
)

func (a *app) bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			logrus.Warnf("failed to bind flag %s: %v", name, err)
		}
	}
}

func (a *app) limits() smoltlv.Limits {
	return smoltlv.Limits{
		MaxDepth:        a.v.GetInt("max-depth"),
		MaxDocumentSize: a.v.GetInt("max-document-size"),
	}
}

func (a *app) decodeOptions() []smoltlv.DecodeOption {
	return []smoltlv.DecodeOption{
		smoltlv.WithReadLimits(a.limits()),
		smoltlv.WithAllowUnknownTypes(a.v.GetBool("allow-unknown")),
	}
}
