package module

import (
	"context"

	"chronosplit/internal/adapters/ingest/archive"
	"chronosplit/internal/adapters/output/fsout"
	"chronosplit/internal/services/split/domain"
)

// decoderPort exposes the archive decoder as a domain port
type decoderPort struct{ d *archive.Decoder }

func (a decoderPort) Decode(ctx context.Context, path string) (domain.Decoded, error) {
	doc, rep, err := a.d.Decode(ctx, path)
	if err != nil {
		return domain.Decoded{}, err
	}
	return domain.Decoded{
		Doc:            doc,
		Encoding:       rep.Encoding,
		Detected:       rep.Detected,
		PrefixStripped: rep.PrefixStripped,
		RawScan:        rep.RawScan,
		Bytes:          rep.Bytes,
	}, nil
}

// writerPort exposes the filesystem writer as a domain port
type writerPort struct{ w *fsout.Writer }

func (a writerPort) Write(ctx context.Context, u domain.Unit) (domain.Written, error) {
	res, err := a.w.Write(ctx, fsout.Unit{Period: u.Period, Part: u.Part, Ext: u.Ext, Content: u.Content})
	if err != nil {
		return domain.Written{}, err
	}
	return domain.Written{Path: res.Path, Bytes: res.Bytes, Lossy: res.Lossy}, nil
}
