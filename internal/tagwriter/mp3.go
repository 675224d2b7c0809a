package tagwriter

import (
	"context"
	"strconv"
	"strings"

	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/audio-pipeline/internal/logger"
)

func (w *WriterImpl) writeMP3(ctx context.Context, req *WriteRequest) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false.
	tag, err := id3v2.Open(req.FilePath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	addMP3Tags(ctx, tag, req)

	if req.Art != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    req.Art.MimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     req.Art.Bytes,
		})
	}

	return tag.Save()
}

func addMP3Tags(ctx context.Context, tag *id3v2.Tag, req *WriteRequest) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	meta := req.Metadata

	tag.SetAlbum(meta.Album)
	tag.SetArtist(meta.Artist)
	tag.SetTitle(meta.Title)

	if len(meta.Genres) > 0 {
		tag.SetGenre(meta.Genres[0])
	}

	if meta.Year > 0 {
		tag.SetYear(strconv.Itoa(meta.Year))
	}

	lyrics := strings.TrimSpace(req.Lyrics)
	if lyrics == "" {
		return
	}

	tag.AddUnsynchronisedLyricsFrame(
		//nolint:exhaustruct // ContentDescriptor not available in source data.
		id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Lyrics:   lyrics,
			Language: id3v2.EnglishISO6392Code,
		})

	logger.Debugf(ctx, "wrote lyrics frame for %s", req.FilePath)
}
