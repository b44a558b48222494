package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Upload stores an object under the given key.
func (c *Client) Upload(ctx context.Context, src io.Reader, objectKey, contentType string) error {
	_, err := c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        aws.ReadSeekCloser(src),
		ContentType: aws.String(contentType),
	})
	return err
}

// PresignDownload generates a time-limited download URL. The original
// filename rides along in the content disposition so the browser saves
// the file under the name it was uploaded with.
func (c *Client) PresignDownload(objectKey, filename string, expiry time.Duration) (string, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket:                     aws.String(c.bucketName),
		Key:                        aws.String(objectKey),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
	})

	return req.Presign(expiry)
}

// Delete removes an object. Deleting a missing key is not an error in S3.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objectKey),
	})
	return err
}
