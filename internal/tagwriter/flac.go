package tagwriter

import (
	"path/filepath"
	"strconv"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// extractFLACCommentResult mirrors the find-or-create Vorbis comment block
// lookup performed before writing.
type extractFLACCommentResult struct {
	Comment *flacvorbis.MetaDataBlockVorbisComment
	Index   int
}

func (w *WriterImpl) writeFLAC(req *WriteRequest) error {
	f, err := flac.ParseFile(filepath.Clean(req.FilePath))
	if err != nil {
		return err
	}

	commentResult, err := extractFLACComment(f)
	if err != nil {
		return err
	}

	comment := commentResult.Comment
	if comment == nil {
		comment = flacvorbis.New()
	}

	if err := addFLACTags(comment, req); err != nil {
		return err
	}

	tagMeta := comment.Marshal()
	if commentResult.Index >= 0 {
		f.Meta[commentResult.Index] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	if req.Art != nil {
		if picMeta, picErr := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "", req.Art.Bytes, req.Art.MimeType,
		); picErr == nil {
			marshalled := picMeta.Marshal()
			f.Meta = append(f.Meta, &marshalled)
		}
	}

	return f.Save(req.FilePath)
}

func extractFLACComment(f *flac.File) (*extractFLACCommentResult, error) {
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return &extractFLACCommentResult{Comment: comment, Index: idx}, nil
		}
	}

	return &extractFLACCommentResult{Comment: nil, Index: -1}, nil
}

func addFLACTags(comment *flacvorbis.MetaDataBlockVorbisComment, req *WriteRequest) error {
	meta := req.Metadata

	tags := map[string]string{
		"TITLE":  meta.Title,
		"ARTIST": meta.Artist,
		"ALBUM":  meta.Album,
	}

	if meta.Year > 0 {
		tags["DATE"] = strconv.Itoa(meta.Year)
	}

	if len(meta.Genres) > 0 {
		tags["GENRE"] = meta.Genres[0]
	}

	if req.Lyrics != "" {
		tags["LYRICS"] = req.Lyrics
	}

	for k, v := range tags {
		if v == "" {
			continue
		}

		if err := comment.Add(k, v); err != nil {
			return err
		}
	}

	return nil
}
